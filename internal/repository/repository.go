package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"skillup-go/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// Repository holds the operations every aggregate supports.
// Reads go straight to the database; writes are queued on the owning unit of work.
type Repository[T any] struct {
	db  *gorm.DB
	uow *UnitOfWork
}

func newRepository[T any](db *gorm.DB, uow *UnitOfWork) Repository[T] {
	return Repository[T]{db: db, uow: uow}
}

func (r *Repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *Repository[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Find returns all rows matching the condition, in primary key order.
func (r *Repository[T]) Find(ctx context.Context, query interface{}, args ...interface{}) ([]T, error) {
	var out []T
	err := r.db.WithContext(ctx).Where(query, args...).Order("id").Find(&out).Error
	return out, err
}

func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *Repository[T]) Count(ctx context.Context, query interface{}, args ...interface{}) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&count).Error
	return count, err
}

func (r *Repository[T]) Total(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// Add queues an insert. The entity's ID is populated by SaveChanges.
func (r *Repository[T]) Add(entity *T) {
	r.uow.enqueue(func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
}

func (r *Repository[T]) Update(entity *T) {
	r.uow.enqueue(func(tx *gorm.DB) error {
		return tx.Save(entity).Error
	})
}

func (r *Repository[T]) Remove(entity *T) {
	r.uow.enqueue(func(tx *gorm.DB) error {
		return tx.Delete(entity).Error
	})
}

// RemoveWhere queues a conditional delete.
func (r *Repository[T]) RemoveWhere(query interface{}, args ...interface{}) {
	r.uow.enqueue(func(tx *gorm.DB) error {
		return tx.Where(query, args...).Delete(new(T)).Error
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// UnitOfWork groups queued writes and commits them in one transaction.
type UnitOfWork struct {
	db      *gorm.DB
	mu      sync.Mutex
	pending []func(tx *gorm.DB) error

	Users             *UserRepository
	Sessions          *SessionRepository
	Notifications     *NotificationRepository
	Orders            *OrderRepository
	LearningPaths     *LearningPathRepository
	Contents          *ContentRepository
	UserLearningPaths *EnrollmentRepository
	UserProgress      *ProgressRepository
	Activities        *ActivityRepository
	Assessments       *AssessmentRepository
	Questions         *QuestionRepository
	AssessmentResults *ResultRepository
	UserAnswers       *AnswerRepository
	Files             *FileRepository
	FileShares        *FileShareRepository
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	u := &UnitOfWork{db: db}
	u.Users = &UserRepository{newRepository[models.User](db, u)}
	u.Sessions = &SessionRepository{newRepository[models.UserSession](db, u)}
	u.Notifications = &NotificationRepository{newRepository[models.Notification](db, u)}
	u.Orders = &OrderRepository{newRepository[models.Order](db, u)}
	u.LearningPaths = &LearningPathRepository{newRepository[models.LearningPath](db, u)}
	u.Contents = &ContentRepository{newRepository[models.Content](db, u)}
	u.UserLearningPaths = &EnrollmentRepository{newRepository[models.UserLearningPath](db, u)}
	u.UserProgress = &ProgressRepository{newRepository[models.UserProgress](db, u)}
	u.Activities = &ActivityRepository{newRepository[models.UserActivity](db, u)}
	u.Assessments = &AssessmentRepository{newRepository[models.Assessment](db, u)}
	u.Questions = &QuestionRepository{newRepository[models.Question](db, u)}
	u.AssessmentResults = &ResultRepository{newRepository[models.AssessmentResult](db, u)}
	u.UserAnswers = &AnswerRepository{newRepository[models.UserAnswer](db, u)}
	u.Files = &FileRepository{newRepository[models.FileUpload](db, u)}
	u.FileShares = &FileShareRepository{newRepository[models.FileShare](db, u)}
	return u
}

func (u *UnitOfWork) enqueue(op func(tx *gorm.DB) error) {
	u.mu.Lock()
	u.pending = append(u.pending, op)
	u.mu.Unlock()
}

// Pending reports how many writes are queued.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// SaveChanges runs every queued write in a single transaction.
// The queue is cleared whether or not the commit succeeds.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	u.mu.Lock()
	ops := u.pending
	u.pending = nil
	u.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save changes: %w", err)
	}
	return nil
}

// Store hands out a fresh unit of work per handler invocation.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UnitOfWork() *UnitOfWork {
	return NewUnitOfWork(s.db)
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
