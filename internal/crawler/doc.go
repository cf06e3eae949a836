// Package crawler walks the paginated result listings of the corpus search
// service.
//
// # Components
//
//   - PageFetcher: fetches one results page and extracts its listing
//   - HTTPFetcher: the net/http implementation, with optional proxy
//   - ParseListing: goquery extractor for the source listing
//   - RetryPolicy: bounded retry with capped exponential backoff
//   - Throttle: minimum delay plus random jitter before every request
//   - Paginator: requests page 0, 1, 2, ... until the listing is exhausted
//
// # Politeness
//
// The search service is shared with other researchers. Every request
// attempt, retries included, first waits on the Throttle, and every
// request has a finite timeout.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(client)
//	p := crawler.NewPaginator(fetcher, crawler.WithThrottle(crawler.NewThrottle(time.Second, 3*time.Second)))
//	records, err := p.Crawl(ctx, crawler.Job{Address: q.Address(), Template: tmpl}, onPage)
package crawler
