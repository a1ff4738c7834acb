package db

// AdminSession is a persisted dashboard session token keyed by the browser
// session id.
type AdminSession struct {
	Key       string `gorm:"primaryKey;size:80"`
	Token     string `gorm:"type:text;not null"`
	ExpiresAt int64  `gorm:"index"` // unix seconds, 0 = never
	CreatedAt int64
}
