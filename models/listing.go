package models

// Listing is one offer as a source site publishes it. The URL is its identity.
type Listing struct {
	URL    string `json:"url" db:"url"`
	Source string `json:"source" db:"source"`
	Name   string `json:"name" db:"name"`
}

// NewListing is an offer awaiting a triage decision.
type NewListing struct {
	URL         string `json:"url" db:"url"`
	Source      string `json:"source" db:"source"`
	Name        string `json:"name" db:"name"`
	Interesting bool   `json:"interesting" db:"interesting"`
}

// RejectedListing is an offer the user excluded, with exactly one reason.
type RejectedListing struct {
	URL    string `json:"url" db:"url"`
	Source string `json:"source" db:"source"`
	Name   string `json:"name" db:"name"`
	Reason Reason `json:"reason" db:"reason"`
}

// Fresh builds the New entry for a listing seen for the first time.
func (l Listing) Fresh() NewListing {
	return NewListing{URL: l.URL, Source: l.Source, Name: l.Name}
}

func (n NewListing) Reject(reason Reason) RejectedListing {
	return RejectedListing{URL: n.URL, Source: n.Source, Name: n.Name, Reason: reason}
}

// Reinstate moves a rejected offer back to New. The interesting flag starts cleared.
func (r RejectedListing) Reinstate() NewListing {
	return NewListing{URL: r.URL, Source: r.Source, Name: r.Name}
}
