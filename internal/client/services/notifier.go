package services

// NoticeKind classifies what the operator is told.
type NoticeKind int

const (
	// NoticeWarning reports a transport problem; the edit state is kept and
	// the next poll retries.
	NoticeWarning NoticeKind = iota
	// NoticeRejected carries the server's own refusal message.
	NoticeRejected
	// NoticeChanged asks the view to re-render, e.g. after a local record
	// was removed.
	NoticeChanged
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeWarning:
		return "warning"
	case NoticeRejected:
		return "rejected"
	case NoticeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Notifier surfaces dismissible notices to the operator.
type Notifier interface {
	Notify(kind NoticeKind, msg string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(NoticeKind, string) {}
