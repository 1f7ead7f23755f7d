package engine

import "time"

// BookStats summarizes a book extraction run.
type BookStats struct {
	PagesProcessed      int
	Blocks              int
	Emitted             int
	Partial             int
	DuplicateHeaders    int
	NoiseDropped        int
	RejectedImages      int
	CheckErrors         int
	Recognized          int
	RecognitionFailures int
	Duration            time.Duration
}

// GridStats summarizes a grid extraction run.
type GridStats struct {
	PagesProcessed      int
	PagesSkipped        int
	Sections            int
	Boards              int
	Bubbles             int
	OCRMisses           int
	Recognized          int
	RecognitionFailures int
	Duration            time.Duration
}
