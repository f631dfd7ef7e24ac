package config

// BaseURLFor returns the node base URL of an XMTP environment.
func BaseURLFor(env string) (string, bool) {
	switch env {
	case "local":
		return "http://localhost:5555", true
	case "dev":
		return "https://dev.xmtp.network", true
	case "production":
		return "https://production.xmtp.network", true
	default:
		return "", false
	}
}

// Environments lists the known environment names.
func Environments() []string {
	return []string{"dev", "local", "production"}
}
