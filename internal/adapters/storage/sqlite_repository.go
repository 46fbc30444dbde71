package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"obra/internal/domain"
	"obra/internal/logging"
	"obra/internal/ports"
)

// SQLiteRepository implements ports.Store using GORM
type SQLiteRepository struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.Store = (*SQLiteRepository)(nil)

// gormLogger wraps the obra logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error", "error", err, "duration", elapsed, "sql", sql, "rows", rows)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query", "duration", elapsed, "sql", sql, "rows", rows)
	} else {
		logging.Logger.Debug("gorm query", "duration", elapsed, "sql", sql, "rows", rows)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("OBRA_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteRepository creates a new SQLiteRepository at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Expand home directory if present
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(
		&ProjectModel{},
		&TicketModel{},
		&TicketWorkflowStateModel{},
		&EpicModel{},
		&EpicWorkflowStateModel{},
		&SessionModel{},
		&SessionEventModel{},
		&CommentModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Project methods

// AddProject implements ProjectRepository.AddProject
func (r *SQLiteRepository) AddProject(ctx context.Context, project domain.Project) error {
	model := domainToProjectModel(project)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// GetProject implements ProjectRepository.GetProject
func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var model ProjectModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("project", id)
		}
		return nil, err
	}

	project := projectModelToDomain(model)
	return &project, nil
}

// ListProjects implements ProjectRepository.ListProjects
func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var models []ProjectModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Order("created_at").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(models))
	for _, m := range models {
		projects = append(projects, projectModelToDomain(m))
	}
	return projects, nil
}

// Ticket methods

// AddTicket implements TicketWriter.AddTicket
func (r *SQLiteRepository) AddTicket(ctx context.Context, ticket domain.Ticket) error {
	model := domainToTicketModel(ticket)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// GetTicket implements TicketReader.GetTicket
func (r *SQLiteRepository) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var model TicketModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ticket", id)
		}
		return nil, err
	}

	ticket := ticketModelToDomain(model)
	return &ticket, nil
}

// ListTickets implements TicketReader.ListTickets
func (r *SQLiteRepository) ListTickets(ctx context.Context, projectID string) ([]domain.Ticket, error) {
	var models []TicketModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("project_id = ?", projectID).
			Order("position, created_at").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(models))
	for _, m := range models {
		tickets = append(tickets, ticketModelToDomain(m))
	}
	return tickets, nil
}

// ListTicketsByEpic implements TicketReader.ListTicketsByEpic
func (r *SQLiteRepository) ListTicketsByEpic(ctx context.Context, epicID string) ([]domain.Ticket, error) {
	var models []TicketModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("epic_id = ?", epicID).
			Order("position, created_at").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(models))
	for _, m := range models {
		tickets = append(tickets, ticketModelToDomain(m))
	}
	return tickets, nil
}

// NextActionableTicket implements TicketReader.NextActionableTicket
func (r *SQLiteRepository) NextActionableTicket(ctx context.Context, projectID string) (*domain.Ticket, error) {
	var model TicketModel
	found := false

	err := withRetry(func() error {
		// Ready tickets win over backlog, position breaks ties
		for _, status := range []string{string(domain.StatusReady), string(domain.StatusBacklog)} {
			err := r.db.WithContext(ctx).
				Where("project_id = ? AND status = ?", projectID, status).
				Order("position, created_at").
				First(&model).Error
			if err == nil {
				found = true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	ticket := ticketModelToDomain(model)
	return &ticket, nil
}

// UpdateTicketStatus implements TicketWriter.UpdateTicketStatus
func (r *SQLiteRepository) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return r.updateTicketColumn(ctx, id, "status", string(status))
}

// UpdateTicketBranch implements TicketWriter.UpdateTicketBranch
func (r *SQLiteRepository) UpdateTicketBranch(ctx context.Context, id, branchName string) error {
	return r.updateTicketColumn(ctx, id, "branch_name", branchName)
}

// UpdateTicketEpic implements TicketWriter.UpdateTicketEpic
func (r *SQLiteRepository) UpdateTicketEpic(ctx context.Context, id string, epicID *string) error {
	return r.updateTicketColumn(ctx, id, "epic_id", epicID)
}

// UpdateTicketPosition implements TicketWriter.UpdateTicketPosition
func (r *SQLiteRepository) UpdateTicketPosition(ctx context.Context, id string, position int) error {
	return r.updateTicketColumn(ctx, id, "position", position)
}

// updateTicketColumn updates a single ticket column, failing with
// NotFound when the ticket does not exist
func (r *SQLiteRepository) updateTicketColumn(ctx context.Context, id, column string, value any) error {
	return withRetry(func() error {
		result := r.db.WithContext(ctx).
			Model(&TicketModel{}).
			Where("id = ?", id).
			Update(column, value)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("ticket", id)
		}
		return nil
	}, 3)
}

// GetTicketWorkflowState implements TicketWorkflowStateStore.GetTicketWorkflowState
func (r *SQLiteRepository) GetTicketWorkflowState(ctx context.Context, ticketID string) (*domain.TicketWorkflowState, error) {
	var model TicketWorkflowStateModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ticket workflow state", ticketID)
		}
		return nil, err
	}

	ws := ticketWorkflowModelToDomain(model)
	return &ws, nil
}

// SaveTicketWorkflowState implements TicketWorkflowStateStore.SaveTicketWorkflowState
func (r *SQLiteRepository) SaveTicketWorkflowState(ctx context.Context, state domain.TicketWorkflowState) error {
	model := domainToTicketWorkflowModel(state)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Save(&model).Error
	}, 3)
}

// Epic methods

// AddEpic implements EpicWriter.AddEpic
func (r *SQLiteRepository) AddEpic(ctx context.Context, epic domain.Epic) error {
	model := domainToEpicModel(epic)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// GetEpic implements EpicReader.GetEpic
func (r *SQLiteRepository) GetEpic(ctx context.Context, id string) (*domain.Epic, error) {
	var model EpicModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("epic", id)
		}
		return nil, err
	}

	epic := epicModelToDomain(model)
	return &epic, nil
}

// ListEpics implements EpicReader.ListEpics
func (r *SQLiteRepository) ListEpics(ctx context.Context, projectID string) ([]domain.Epic, error) {
	var models []EpicModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("project_id = ?", projectID).
			Order("created_at").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	epics := make([]domain.Epic, 0, len(models))
	for _, m := range models {
		epics = append(epics, epicModelToDomain(m))
	}
	return epics, nil
}

// DeleteEpic implements EpicWriter.DeleteEpic. Member tickets are
// unlinked and the epic plus its workflow state removed atomically.
func (r *SQLiteRepository) DeleteEpic(ctx context.Context, id string) error {
	return withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var model EpicModel
			if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NewNotFoundError("epic", id)
				}
				return err
			}

			if err := tx.Model(&TicketModel{}).
				Where("epic_id = ?", id).
				Update("epic_id", nil).Error; err != nil {
				return fmt.Errorf("failed to unlink tickets: %w", err)
			}

			if err := tx.Where("epic_id = ?", id).Delete(&EpicWorkflowStateModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete epic workflow state: %w", err)
			}

			if err := tx.Where("id = ?", id).Delete(&EpicModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete epic: %w", err)
			}

			return nil
		})
	}, 3)
}

// GetEpicWorkflowState implements EpicWorkflowStateStore.GetEpicWorkflowState
func (r *SQLiteRepository) GetEpicWorkflowState(ctx context.Context, epicID string) (*domain.EpicWorkflowState, error) {
	var model EpicWorkflowStateModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("epic_id = ?", epicID).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("epic workflow state", epicID)
		}
		return nil, err
	}

	ws := epicWorkflowModelToDomain(model)
	return &ws, nil
}

// SaveEpicWorkflowState implements EpicWorkflowStateStore.SaveEpicWorkflowState
func (r *SQLiteRepository) SaveEpicWorkflowState(ctx context.Context, state domain.EpicWorkflowState) error {
	model := domainToEpicWorkflowModel(state)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Save(&model).Error
	}, 3)
}

// Session methods

// AddSession implements SessionWriter.AddSession
func (r *SQLiteRepository) AddSession(ctx context.Context, session domain.Session) error {
	model, err := domainToSessionModel(session)
	if err != nil {
		return err
	}
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// UpdateSession implements SessionWriter.UpdateSession
func (r *SQLiteRepository) UpdateSession(ctx context.Context, session domain.Session) error {
	model, err := domainToSessionModel(session)
	if err != nil {
		return err
	}
	return withRetry(func() error {
		result := r.db.WithContext(ctx).
			Model(&SessionModel{}).
			Where("id = ?", session.ID).
			Updates(map[string]any{
				"state":         model.State,
				"history":       model.History,
				"outcome":       model.Outcome,
				"error_message": model.ErrorMessage,
				"completed_at":  model.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("session", session.ID)
		}
		return nil
	}, 3)
}

// GetSession implements SessionReader.GetSession
func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var model SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("session", id)
		}
		return nil, err
	}

	session, err := sessionModelToDomain(model)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveSession implements SessionReader.GetActiveSession
func (r *SQLiteRepository) GetActiveSession(ctx context.Context, ticketID string) (*domain.Session, error) {
	var model SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("ticket_id = ? AND completed_at IS NULL", ticketID).
			Order("started_at DESC").
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session, err := sessionModelToDomain(model)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetLatestSession implements SessionReader.GetLatestSession
func (r *SQLiteRepository) GetLatestSession(ctx context.Context, ticketID string) (*domain.Session, error) {
	var model SessionModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("ticket_id = ?", ticketID).
			Order("started_at DESC").
			First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("session for ticket", ticketID)
		}
		return nil, err
	}

	session, err := sessionModelToDomain(model)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions implements SessionReader.ListSessions
func (r *SQLiteRepository) ListSessions(ctx context.Context, ticketID string, limit int) ([]domain.SessionSummary, error) {
	var models []SessionModel
	err := withRetry(func() error {
		query := r.db.WithContext(ctx).
			Where("ticket_id = ?", ticketID).
			Order("started_at DESC")
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query.Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.SessionSummary, 0, len(models))
	for _, m := range models {
		summary, err := sessionModelToSummary(m)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Event methods

// AppendEvent implements EventAppender.AppendEvent. The per-session
// sequence number is assigned inside the insert transaction.
func (r *SQLiteRepository) AppendEvent(ctx context.Context, event domain.SessionEvent) error {
	model, err := domainToEventModel(event)
	if err != nil {
		return err
	}
	return withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var maxSeq int64
			if err := tx.Model(&SessionEventModel{}).
				Where("session_id = ?", event.SessionID).
				Select("COALESCE(MAX(seq), 0)").
				Scan(&maxSeq).Error; err != nil {
				return err
			}
			model.Seq = maxSeq + 1
			return tx.Create(&model).Error
		})
	}, 3)
}

// ListEvents implements EventReader.ListEvents
func (r *SQLiteRepository) ListEvents(ctx context.Context, sessionID, sinceID string, limit int) ([]domain.SessionEvent, error) {
	var sinceSeq int64
	if sinceID != "" {
		var since SessionEventModel
		err := withRetry(func() error {
			return r.db.WithContext(ctx).Where("id = ?", sinceID).First(&since).Error
		}, 3)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewNotFoundError("event", sinceID)
			}
			return nil, err
		}
		sinceSeq = since.Seq
	}

	var models []SessionEventModel
	err := withRetry(func() error {
		query := r.db.WithContext(ctx).
			Where("session_id = ? AND seq > ?", sessionID, sinceSeq).
			Order("seq")
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query.Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	events := make([]domain.SessionEvent, 0, len(models))
	for _, m := range models {
		event, err := eventModelToDomain(m)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// Comment methods

// AddComment implements CommentSink.AddComment
func (r *SQLiteRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	model := domainToCommentModel(comment)
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// ListComments implements CommentSink.ListComments
func (r *SQLiteRepository) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var models []CommentModel
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("ticket_id = ?", ticketID).
			Order("created_at").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		comments = append(comments, commentModelToDomain(m))
	}
	return comments, nil
}

// withRetry retries operations on SQLITE_BUSY with exponential backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
