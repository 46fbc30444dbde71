package ports

// Store is the composite persistence interface backed by one database
type Store interface {
	ProjectRepository
	TicketRepository
	EpicRepository
	SessionRepository
	CommentSink
	Close() error
}
