package config

// FirebaseEnabled reports whether device push through FCM is configured.
func FirebaseEnabled() bool {
	return AppConfig.FirebaseCredentialsFile != ""
}
