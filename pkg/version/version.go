// Package version provides version information for the eve-value application.
package version

// Version is the current version of the eve-value application.
const Version = "0.3.1"

// AgentString returns the User-Agent value sent with outbound market requests.
// Format: eve-value/v{version}
func AgentString() string {
	return "eve-value/v" + Version
}
