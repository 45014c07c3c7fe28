package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total        int
	Current      int
	Done         int
	Skipped      int
	Failed       int
	BlankCells   int   // cells left white across all written sheets
	BytesWritten int64 // total size of written sheets
}

// Add folds one video's result into the totals.
func (s *RunStats) Add(r Result) {
	switch r.Status {
	case StatusDone:
		s.Done++
		s.BlankCells += r.FramesFailed
		s.BytesWritten += r.Bytes
	case StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// OK reports whether no video failed.
func (s *RunStats) OK() bool { return s.Failed == 0 }
