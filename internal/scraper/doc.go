// Package scraper fetches the studio's public schedule page and extracts the
// session list embedded in it.
//
// The page is a server-rendered application that ships its state as a single
// <script type="application/json"> element. The scraper locates that element
// with goquery, validates the props.pageProps.sessions path and decodes the
// entries into session.Raw values. FetchDataset additionally flattens them
// into a session.Dataset stamped with the fetch time.
package scraper
