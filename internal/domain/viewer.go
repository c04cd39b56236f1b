package domain

import "time"

// Viewer is a rating identity bound 1:1 to an authenticated user. Rows are
// created lazily the first time a user needs one and never updated afterwards.
type Viewer struct {
	ID         string
	UserID     string
	AccountID  string
	FirstName  string
	LastName   string
	StreetAddr string
	City       string
	State      string
	ZipCode    int
	OpenDate   time.Time
	EmailAddr  string
	MonthlyFee int
	CountryID  string
}

// Country is a reference row used as the default residence for provisioned viewers.
type Country struct {
	ID      string
	ISOCode int
	Name    string
}
