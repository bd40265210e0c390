package errorlog

import "fmt"

const (
	CategoryGeneral       = "general"
	CategoryCritical      = "critical"
	CategoryDatabase      = "database"
	CategoryUndefinedVars = "undefined_vars"
	CategoryUser          = "user"
	CategoryTemplate      = "template"
	CategoryDebug         = "debug"
)

var knownCategories = []string{
	CategoryGeneral,
	CategoryCritical,
	CategoryDatabase,
	CategoryUndefinedVars,
	CategoryUser,
	CategoryTemplate,
	CategoryDebug,
}

// Record is one row of the error log.
type Record struct {
	ID        uint64 `json:"id" gorm:"primaryKey"`
	MemberID  uint64 `json:"member_id" gorm:"not null;default:0;index"`
	LogTime   int64  `json:"log_time" gorm:"not null;index"`
	IP        string `json:"ip" gorm:"size:64;not null;default:''"`
	URL       string `json:"url" gorm:"type:text;not null;default:''"`
	Message   string `json:"message" gorm:"type:text;not null;default:''"`
	Session   string `json:"session" gorm:"size:128;not null;default:''"`
	ErrorType string `json:"error_type" gorm:"size:32;not null;default:'general';index"`
	File      string `json:"file" gorm:"size:255;not null;default:''"`
	Line      int    `json:"line" gorm:"not null;default:0"`
}

func (Record) TableName() string {
	return "log_errors"
}

// sameAs compares every field but the id and the time.
func (r Record) sameAs(o Record) bool {
	return r.MemberID == o.MemberID &&
		r.IP == o.IP &&
		r.URL == o.URL &&
		r.Message == o.Message &&
		r.Session == o.Session &&
		r.ErrorType == o.ErrorType &&
		r.File == o.File &&
		r.Line == o.Line
}

// Level is the severity passed to HandleError.
type Level int

const (
	LevelError   Level = 1
	LevelWarning Level = 2
	LevelNotice  Level = 8
	LevelStrict  Level = 2048
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "Error"
	case LevelWarning:
		return "Warning"
	case LevelStrict:
		return "Strict"
	default:
		return "Notice"
	}
}

// Abort unwinds a request after a fatal error. Only the recovery middleware
// recovers it.
type Abort struct {
	Message  string
	Code     string
	Status   int
	Rendered bool
}

func (a *Abort) Error() string {
	if a.Code != "" {
		return fmt.Sprintf("fatal error %s: %s", a.Code, a.Message)
	}
	return "fatal error: " + a.Message
}

// LangError names a fatal error by its language key. Services return it and
// handlers raise it with FatalLang. An empty Category means the error is not
// logged.
type LangError struct {
	Key      string
	Category string
	Args     []interface{}
}

func (e *LangError) Error() string {
	return e.Key
}

func NewLangError(key, category string, args ...interface{}) *LangError {
	return &LangError{Key: key, Category: category, Args: args}
}

type ListOptions struct {
	Category string
	Page     int
	Limit    int
}

type ListResponse struct {
	Errors     []*Record      `json:"errors"`
	Categories map[string]int `json:"categories"`
	Pagination Pagination     `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type DeleteRequest struct {
	IDs []uint64 `json:"ids"`
	All bool     `json:"all"`
}

type ArchiveResult struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url,omitempty"`
	Records    int    `json:"records"`
	Pruned     int64  `json:"pruned"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
