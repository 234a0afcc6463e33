// Package decorator applies the proxy's own attribution headers to a
// real upstream response: Via, and Server when the upstream left it
// unset.
//
// Grounded on the teacher's response-side header handling (the Via/Server
// append-vs-set distinction mirrors reverse_proxy.go's Director pattern,
// applied to the response leg instead of the request leg).
package decorator

import (
	"net/http"

	"github.com/dpearson/cachingproxy/internal/httpcache"
)

// viaProduct identifies this proxy in the Via header, per spec.md §4.6.
const viaProduct = "rustnish-0.0.1"

// Decorate appends a Via header describing the upstream's protocol
// version and this proxy, and sets a Server header only if the upstream
// response did not already carry one. It must only be called on real
// upstream responses — never on synthesized 4xx/5xx error responses.
func Decorate(resp *http.Response) {
	label := httpcache.VersionLabel(resp.ProtoMajor, resp.ProtoMinor)
	resp.Header.Add("Via", label+" "+viaProduct)

	if resp.Header.Get("Server") == "" {
		resp.Header.Set("Server", "rustnish")
	}
}
