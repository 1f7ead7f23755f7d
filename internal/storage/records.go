package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/thyrook/puzzlemine/internal/extract"
)

const (
	// DiagramBucket stores assembled book diagrams
	DiagramBucket = "diagrams"

	// SectionBucket stores analyzed grid sections
	SectionBucket = "sections"

	// MetaBucket stores run metadata and the resume cursor
	MetaBucket = "meta"

	runIDKey     = "run_id"
	lastPageKey  = "last_page"
	updatedAtKey = "updated_at"
)

// BubbleRecord is one bubble marker found above a section's board.
// Digit is nil when OCR produced nothing usable.
type BubbleRecord struct {
	Digit *int   `json:"digit"`
	Fill  string `json:"fill"` // "white" (outlined) or "black" (filled)
}

// SectionRecord is the persisted result for one grid cell of one page.
// Coordinates are render pixels of the cell on the page image.
type SectionRecord struct {
	Page             int            `json:"page"`
	Section          int            `json:"section"` // 1-based, column-major
	Row              int            `json:"row"`
	Col              int            `json:"col"`
	Board            bool           `json:"board"`
	Confidence       int            `json:"confidence"` // square count from the detector
	Bubbles          []BubbleRecord `json:"bubbles"`
	DetectedNumber   *int           `json:"detected_number"` // printed number read by OCR, nil on miss
	CalculatedNumber int            `json:"calculated_number"`
	X1               int            `json:"x1"`
	Y1               int            `json:"y1"`
	X2               int            `json:"x2"`
	Y2               int            `json:"y2"`
	FEN              string         `json:"fen"`
	APITurn          string         `json:"api_turn"`
}

// RecordStore persists extraction results in a BoltDB file: one bucket
// of book diagrams, one of grid sections, plus run metadata. Records
// are keyed by insertion sequence so iteration preserves extraction
// order.
type RecordStore struct {
	db       *bbolt.DB
	dbPath   string
	runID    string
	isClosed bool
}

// NewRecordStore opens (or creates) the store at dbPath. Every open
// stamps a fresh run identifier into the meta bucket; the resume
// cursor and stored records survive across runs.
func NewRecordStore(dbPath string) (*RecordStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	runID := uuid.New().String()

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{DiagramBucket, SectionBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(MetaBucket))
		return meta.Put([]byte(runIDKey), []byte(runID))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &RecordStore{
		db:     db,
		dbPath: dbPath,
		runID:  runID,
	}, nil
}

// RunID returns the identifier stamped at open time.
func (s *RecordStore) RunID() string {
	return s.runID
}

// SaveDiagram appends one assembled diagram record.
func (s *RecordStore) SaveDiagram(d *extract.Diagram) error {
	if s.isClosed {
		return fmt.Errorf("store is closed")
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}
	return s.append(DiagramBucket, data)
}

// SaveSection appends one grid section record.
func (s *RecordStore) SaveSection(rec *SectionRecord) error {
	if s.isClosed {
		return fmt.Errorf("store is closed")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal section: %w", err)
	}
	return s.append(SectionBucket, data)
}

func (s *RecordStore) append(bucket string, data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucket)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		if err := b.Put(key, data); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// touch refreshes the meta updated_at stamp inside tx.
func (s *RecordStore) touch(tx *bbolt.Tx) error {
	meta := tx.Bucket([]byte(MetaBucket))
	if meta == nil {
		return fmt.Errorf("meta bucket not found")
	}
	stamp := make([]byte, 8)
	binary.BigEndian.PutUint64(stamp, uint64(time.Now().Unix()))
	return meta.Put([]byte(updatedAtKey), stamp)
}

// Diagrams returns all stored diagrams in insertion order.
func (s *RecordStore) Diagrams() ([]extract.Diagram, error) {
	if s.isClosed {
		return nil, fmt.Errorf("store is closed")
	}

	var diagrams []extract.Diagram
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(DiagramBucket))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			var d extract.Diagram
			if err := json.Unmarshal(v, &d); err != nil {
				return nil // skip corrupted record
			}
			diagrams = append(diagrams, d)
			return nil
		})
	})
	return diagrams, err
}

// Sections returns all stored grid sections in insertion order.
func (s *RecordStore) Sections() ([]SectionRecord, error) {
	if s.isClosed {
		return nil, fmt.Errorf("store is closed")
	}

	var sections []SectionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(SectionBucket))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			var rec SectionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			sections = append(sections, rec)
			return nil
		})
	})
	return sections, err
}

// CountDiagrams returns the number of stored diagram records.
func (s *RecordStore) CountDiagrams() (int, error) {
	return s.count(DiagramBucket)
}

// CountSections returns the number of stored section records.
func (s *RecordStore) CountSections() (int, error) {
	return s.count(SectionBucket)
}

func (s *RecordStore) count(bucket string) (int, error) {
	if s.isClosed {
		return 0, fmt.Errorf("store is closed")
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// LastPage returns the resume cursor: the last fully completed grid
// page, or 0 when no page has completed yet.
func (s *RecordStore) LastPage() (int, error) {
	if s.isClosed {
		return 0, fmt.Errorf("store is closed")
	}

	var page int
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		v := meta.Get([]byte(lastPageKey))
		if v == nil {
			page = 0
			return nil
		}
		page = int(binary.BigEndian.Uint64(v))
		return nil
	})
	return page, err
}

// SetLastPage advances the resume cursor after a page's sections are
// all persisted and flushed.
func (s *RecordStore) SetLastPage(page int) error {
	if s.isClosed {
		return fmt.Errorf("store is closed")
	}
	if page < 0 {
		return fmt.Errorf("invalid page: %d", page)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		v := make([]byte, 8)
		binary.BigEndian.PutUint64(v, uint64(page))
		if err := meta.Put([]byte(lastPageKey), v); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Reset drops all records and the resume cursor. The run identifier
// stays so logs written before and after the reset correlate.
func (s *RecordStore) Reset() error {
	if s.isClosed {
		return fmt.Errorf("store is closed")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{DiagramBucket, SectionBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		if err := meta.Delete([]byte(lastPageKey)); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Close closes the database file.
func (s *RecordStore) Close() error {
	if s.isClosed {
		return nil
	}
	s.isClosed = true
	return s.db.Close()
}

// Stats summarizes store contents for startup logging and the -stats
// command.
type Stats struct {
	Diagrams  int
	Sections  int
	LastPage  int
	RunID     string
	UpdatedAt time.Time
	DBPath    string
}

// GetStats returns current store statistics.
func (s *RecordStore) GetStats() (Stats, error) {
	diagrams, err := s.CountDiagrams()
	if err != nil {
		return Stats{}, err
	}
	sections, err := s.CountSections()
	if err != nil {
		return Stats{}, err
	}
	lastPage, err := s.LastPage()
	if err != nil {
		return Stats{}, err
	}

	var updated time.Time
	err = s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return nil
		}
		if v := meta.Get([]byte(updatedAtKey)); v != nil {
			updated = time.Unix(int64(binary.BigEndian.Uint64(v)), 0)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Diagrams:  diagrams,
		Sections:  sections,
		LastPage:  lastPage,
		RunID:     s.runID,
		UpdatedAt: updated,
		DBPath:    s.dbPath,
	}, nil
}
