// ABOUTME: Version and product identification constants
// ABOUTME: Reported by the CLI, the remote endpoint and the mDNS advertisement
package version

const (
	// Version is the samplepad release
	Version = "0.2.0"

	// Product is the display name
	Product = "Samplepad"

	// Manufacturer identifies the publisher
	Manufacturer = "Resonate"
)

// String returns the product and version, e.g. "Samplepad 0.2.0"
func String() string {
	return Product + " " + Version
}
