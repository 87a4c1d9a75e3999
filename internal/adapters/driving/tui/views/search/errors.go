package search

import "errors"

// ErrNoRetriever is reported when the view was built without a Searcher.
var ErrNoRetriever = errors.New("search: no retriever configured")
