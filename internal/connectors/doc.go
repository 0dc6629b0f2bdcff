// Package connectors groups the provider clients. Each subpackage
// implements the driven.Provider port for one external API and owns
// that API's pagination strategy:
//
//   - stripe: opaque cursor (has_more / starting_after)
//   - adsense: date-window report chunks
//   - carbon: offset pages over a descending-time feed with early exit
//   - buttondown: embedded next-page links, capped
//   - storefront: date discovery plus per-date highwater ids
//
// The httpx subpackage carries the shared JSON client, rate limiting
// and provider-error mapping.
package connectors
