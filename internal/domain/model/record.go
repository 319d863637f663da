// Package model contains domain records passed between layers.
package model

// Entry represents a competition submission being judged.
// JSON tags are the wire contract shared with the session blob host
// and the local persisted document.
type Entry struct {
	ID             string `json:"id"`
	Style          string `json:"style" validate:"required"`
	Brewer         string `json:"brewer" validate:"required"`
	ABV            string `json:"abv,omitempty"`
	IBU            string `json:"ibu,omitempty"`
	Description    string `json:"description,omitempty"`
	FlightPosition int    `json:"flightPosition"`
	RegisteredAt   int64  `json:"registeredAt"` // epoch milliseconds
}

// Feedback is one judge's scorecard for one entry. Immutable once recorded.
//
// BrewerName is captured from the entry at submission time on purpose:
// historical feedback stays attributable even if the entry's brewer field
// is edited later.
type Feedback struct {
	ID          string   `json:"id"`
	BeerID      string   `json:"beerId" validate:"required"`
	BrewerName  string   `json:"brewerName"`
	JudgeName   string   `json:"judgeName" validate:"required"`
	Aroma       int      `json:"aroma" validate:"min=0,max=12"`
	Appearance  int      `json:"appearance" validate:"min=0,max=3"`
	Flavor      int      `json:"flavor" validate:"min=0,max=20"`
	Mouthfeel   int      `json:"mouthfeel" validate:"min=0,max=5"`
	Overall     int      `json:"overall" validate:"min=0,max=10"`
	Descriptors []string `json:"descriptors"`
	Notes       string   `json:"notes"`
	Timestamp   int64    `json:"timestamp"` // epoch milliseconds
}

// Snapshot is the full entity store as persisted locally.
type Snapshot struct {
	Entries  []Entry    `json:"entries"`
	Feedback []Feedback `json:"feedback"`
}

// RemoteSnapshot is the shape mirrored to a shared session. LastUpdate
// is the sole ordering defense under the last-write-wins policy.
type RemoteSnapshot struct {
	Entries    []Entry    `json:"entries"`
	Feedback   []Feedback `json:"feedback"`
	LastUpdate int64      `json:"lastUpdate"`
}

// Clone returns a deep copy of the feedback record.
func (f Feedback) Clone() Feedback {
	out := f
	if f.Descriptors != nil {
		out.Descriptors = make([]string, len(f.Descriptors))
		copy(out.Descriptors, f.Descriptors)
	}
	return out
}

// Clone returns a deep copy of the snapshot so callers can hold it
// without racing store mutations.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Entries:  make([]Entry, len(s.Entries)),
		Feedback: make([]Feedback, len(s.Feedback)),
	}
	copy(out.Entries, s.Entries)
	for i, f := range s.Feedback {
		out.Feedback[i] = f.Clone()
	}
	return out
}

// Remote stamps a snapshot for transmission.
func (s Snapshot) Remote(lastUpdate int64) RemoteSnapshot {
	c := s.Clone()
	return RemoteSnapshot{Entries: c.Entries, Feedback: c.Feedback, LastUpdate: lastUpdate}
}

// Local strips the sync stamp from a remote snapshot.
func (r RemoteSnapshot) Local() Snapshot {
	return Snapshot{Entries: r.Entries, Feedback: r.Feedback}
}
