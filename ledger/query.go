package ledger

// QueryResult is one page of an owner's transactions
type QueryResult struct {
	Count   int
	Page    int
	Results int
	Transactions
}

// Query returns the requested page of the owner's transactions in
// most-recent-first order. Page and results must both be >= 1.
func (s *Store) Query(owner string, page, results int) (QueryResult, error) {
	if page < 1 || results < 1 {
		panic("Page and results must be >= 1")
	}
	txns, err := s.ListForOwner(owner)
	if err != nil {
		return QueryResult{}, err
	}

	count := len(txns)
	start := min((page-1)*results, count)
	end := min(start+results, count)
	return QueryResult{
		Count:        count,
		Page:         page,
		Results:      results,
		Transactions: txns[start:end],
	}, nil
}
