// Bookproxy is a caching lookup proxy for book metadata.
//
// It answers title/author searches and ISBN lookups from a two-tier cache
// and, on a miss, from an ordered chain of upstream catalogs (Google
// Books, ISBNdb, Open Library), normalizing every answer into the Google
// Books volume shape.
//
// Usage:
//
//	# Start the server with defaults and BOOKPROXY_* environment overrides
//	bookproxy run
//
//	# Start with a configuration file
//	bookproxy run --config /etc/bookproxy/config.yaml
//
//	# Check a configuration file
//	bookproxy validate --config config.yaml
//
//	# Remove expired entries from the cold cache
//	bookproxy cache prune
//
//	# Check an ISBN offline
//	bookproxy isbn 0-441-17271-7
package main

func main() {
	Execute()
}
