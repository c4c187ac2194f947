// Package pagination owns the page cursor of one gallery search.
//
// A Controller starts a search at page 1, advances one page per load-more
// trigger and decides when the result stream is exhausted. Every upstream
// call goes through a Throttle (the process-wide rate limiter) before it
// reaches the Fetcher.
//
// Example usage:
//
//	ctrl := pagination.NewController(pixabayClient, limiter, pixabay.DefaultPerPage, logger)
//	out, err := ctrl.StartSearch(ctx, "cats")
//	for err == nil && out.HasMore {
//		out, err = ctrl.LoadNextPage(ctx, "cats")
//	}
//
// Outcomes carry a Status:
//   - StatusFound: first page has results, gallery is replaced
//   - StatusNotFound: first page is empty, gallery is cleared
//   - StatusMore: a page was appended and more remain
//   - StatusExhausted: the stream ended; the final page's items, if any, are appended
//
// The last page is the one where page*perPage >= totalCount.
//
// Responses to a search that has since been superseded by a newer StartSearch
// are discarded with ErrStaleResponse, so the latest request always wins.
package pagination
