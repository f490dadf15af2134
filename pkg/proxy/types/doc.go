// Package types defines the JSON bodies and header names of the lookup API.
//
// Successful lookups mirror the Google Books volume format so clients
// written against that API keep working:
//
//	GET /search?q=dune
//	{"kind":"books#volumes","totalItems":1,"provider":"googlebooks",
//	 "cached":false,"items":[{"id":"...","volumeInfo":{...}}],"requestId":"..."}
//
//	GET /isbn?isbn=9780441172719
//	{"kind":"books#volume","provider":"googlebooks","cached":true,
//	 "id":"...","volumeInfo":{...},"requestId":"..."}
//
// Every error uses one envelope:
//
//	{"error":"invalid request","status":400,"details":[...],"requestId":"..."}
package types
