package neighbors

// Option configures a Searcher.
type Option func(*Searcher)

// WithWorkers bounds the number of goroutines scanning rows.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithChunkSize sets how many query rows one goroutine handles per task.
func WithChunkSize(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.chunk = n
		}
	}
}
