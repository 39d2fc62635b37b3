package config

// NotifxConfig configures outbound email.
type NotifxConfig struct {
	Provider         string
	FromAddress      string
	FromName         string
	AWSRegion        string
	ConfigurationSet string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:         getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress:      getEnv("NOTIFX_FROM_ADDRESS", getEnv("EMAIL_FROM_ADDRESS", "noreply@authcore.local")),
		FromName:         getEnv("NOTIFX_FROM_NAME", getEnv("EMAIL_FROM_NAME", "Authcore")),
		AWSRegion:        getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		ConfigurationSet: getEnv("NOTIFX_SES_CONFIGURATION_SET", ""),
	}
}
