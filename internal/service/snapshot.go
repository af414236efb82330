package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/metrics"
	"github.com/mudon/freelance-management-system-sub000/internal/model"
	"github.com/mudon/freelance-management-system-sub000/internal/repository"
)

const (
	snapshotSubject      = "dashboard-snapshot"
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// ErrSnapshotsDisabled - хранилище снимков не настроено
var ErrSnapshotsDisabled = errors.New("хранилище снимков не настроено")

// SnapshotService периодически сохраняет показатели дашборда
// и рассылает по ним сводку
type SnapshotService struct {
	dashboard   *DashboardService
	repo        *repository.SnapshotRepository
	emailSender *EmailSender
	authService *AuthService
	token       string
	recipient   string
	now         func() time.Time
	logger      *logrus.Logger
}

// NewSnapshotService создает сервис снимков. repo может быть nil:
// тогда снимки только рассылаются, но не сохраняются.
func NewSnapshotService(
	dashboard *DashboardService,
	repo *repository.SnapshotRepository,
	emailSender *EmailSender,
	authService *AuthService,
	token string,
	recipient string,
	logger *logrus.Logger,
) *SnapshotService {
	return &SnapshotService{
		dashboard:   dashboard,
		repo:        repo,
		emailSender: emailSender,
		authService: authService,
		token:       token,
		recipient:   recipient,
		now:         time.Now,
		logger:      logger,
	}
}

// Enabled сообщает, есть ли у снимка получатель: хранилище или рассылка
func (s *SnapshotService) Enabled() bool {
	return s.repo != nil || s.emailSender.Enabled()
}

// Run рассчитывает показатели, сохраняет снимок и отправляет сводку
func (s *SnapshotService) Run(ctx context.Context) (snapshot *model.DashboardSnapshot, err error) {
	defer func() { metrics.IncSnapshotRun(err) }()

	token, err := s.serviceToken()
	if err != nil {
		s.logger.WithError(err).Error("Не удалось получить сервисный токен")
		return nil, fmt.Errorf("ошибка генерации токена: %w", err)
	}

	stats, err := s.dashboard.GetDashboardStats(repository.WithBearerToken(ctx, token))
	if err != nil {
		return nil, fmt.Errorf("не удалось рассчитать снимок: %w", err)
	}

	snapshot = &model.DashboardSnapshot{
		ID:        uuid.New(),
		Stats:     *stats,
		CreatedAt: s.now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, snapshot); err != nil {
			s.logger.WithError(err).Error("Не удалось сохранить снимок дашборда")
			return nil, fmt.Errorf("ошибка сохранения снимка: %w", err)
		}
	}

	if err := s.emailSender.SendDashboardDigest(s.recipient, snapshot); err != nil {
		// сводка не обязательна, снимок уже сохранен
		s.logger.WithError(err).Warn("Не удалось отправить сводку дашборда")
	}

	s.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"persisted":   s.repo != nil,
	}).Info("Снимок дашборда создан")

	return snapshot, nil
}

// List возвращает последние сохраненные снимки
func (s *SnapshotService) List(ctx context.Context, limit int) ([]model.DashboardSnapshot, error) {
	if s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}
	if limit == 0 {
		limit = defaultSnapshotLimit
	}
	if limit < 0 || limit > maxSnapshotLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	snapshots, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения снимков дашборда")
		return nil, err
	}
	return snapshots, nil
}

func (s *SnapshotService) serviceToken() (string, error) {
	if s.token != "" {
		return s.token, nil
	}
	return s.authService.GenerateJWTToken(snapshotSubject)
}
