package api

// Wire types for the companion backend. Field names follow the backend's
// JSON exactly; timestamps stay strings here and are parsed at the point
// of use so a malformed value degrades one record, not a whole response.

// Appointment is a scheduled appointment record.
// Type distinguishes plain appointments from community events that the
// backend folds into the same collection ("appointment" when absent).
type Appointment struct {
	ID           string `json:"appointment_id"`
	Title        string `json:"title"`
	DateTime     string `json:"date_time"`
	Location     string `json:"location"`
	ReminderTime string `json:"reminder_time,omitempty"`
	Type         string `json:"type,omitempty"`
	SeniorID     string `json:"senior_id,omitempty"`
}

// Medication is a prescribed medication record. Time is a time-of-day
// label ("08:00", "morning"), not a timestamp.
type Medication struct {
	ID       string `json:"medication_id"`
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Time     string `json:"time"`
	IsTaken  bool   `json:"isTaken"`
	SeniorID string `json:"senior_id,omitempty"`
}

// MedicationPatch is a partial medication update. Only non-nil fields are
// sent; identifiers are routing concerns and never part of the body.
type MedicationPatch struct {
	Name    *string `json:"name,omitempty"`
	Dosage  *string `json:"dosage,omitempty"`
	Time    *string `json:"time,omitempty"`
	IsTaken *bool   `json:"isTaken,omitempty"`
}

// Event is a community event record.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DateTime string `json:"date_time"`
	Location string `json:"location"`
}

// Article is a news article as the backend relays it from its provider.
type Article struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	PublishedAt string         `json:"publishedAt"`
	URLToImage  string         `json:"urlToImage,omitempty"`
	Description string         `json:"description,omitempty"`
	Source      *ArticleSource `json:"source,omitempty"`
}

// ArticleSource names the upstream outlet.
type ArticleSource struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// NewsQuery selects articles. Zero values are omitted from the request.
type NewsQuery struct {
	Category string
	Query    string
}

// Profile is the subset of the user profile this client reads.
type Profile struct {
	Name           string `json:"name,omitempty"`
	NewsCategories string `json:"news_categories"`
}
