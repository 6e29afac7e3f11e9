package config

import "time"

type RazorpayConfig struct {
	KeyID       string
	KeySecret   string
	BaseURL     string
	CallbackURL string
	IsSandbox   bool
	HTTPTimeout time.Duration
}

func GetRazorpayConfig() RazorpayConfig {
	baseURL := GetEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")
	isSandbox := GetEnvOrDefault("RAZORPAY_SANDBOX", "true") == "true"

	return RazorpayConfig{
		KeyID:       GetEnvOrDefault("RAZORPAY_KEY_ID", "rzp_test_1DP5mmOlF5G5ag"),
		KeySecret:   GetEnvOrDefault("RAZORPAY_KEY_SECRET", "thisissupersecret"),
		BaseURL:     baseURL,
		CallbackURL: GetEnvOrDefault("RAZORPAY_CALLBACK_URL", "http://localhost:8080/api/payments/verify"),
		IsSandbox:   isSandbox,
		HTTPTimeout: 10 * time.Second,
	}
}
