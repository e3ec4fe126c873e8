// Package issue implements the issue workflow: stock reserved eagerly at
// request time, countersigned by the receiving party, then approved into the
// outstanding-issue ledger or rejected back into stock.
package issue

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/clients/notify"
)

// Service runs the pending-issue state machine.
type Service struct {
	repos    *repository.Store
	notifier notify.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an issue service instance.
func NewService(repos *repository.Store, notifier notify.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repos: repos, notifier: notifier, logger: logger, now: time.Now}
}

// Request describes a new issue toward a location.
type Request struct {
	Key      models.ItemKey
	IssuedTo string
	Quantity int
	ItemIDs  []string
}

// Create debits the stock ledger and stages the issue in one unit of work.
// A failed debit means no PendingIssue exists at all.
func (s *Service) Create(ctx context.Context, req Request) (*models.PendingIssue, error) {
	if err := req.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "issue request")
	}
	if strings.TrimSpace(req.IssuedTo) == "" {
		return nil, apperr.New(apperr.KindValidation, "issuedTo is required")
	}
	if err := models.ValidateIDSet(req.ItemIDs); err != nil {
		return nil, err
	}
	key := req.Key.Normalize()

	if err := s.repos.Stock.Debit(ctx, key, req.Quantity, req.ItemIDs); err != nil {
		return nil, err
	}

	issue := &models.PendingIssue{
		ItemKey:     key,
		IssuedTo:    req.IssuedTo,
		Quantity:    req.Quantity,
		IssuedIDs:   req.ItemIDs,
		RequestedAt: s.now(),
	}
	if err := s.repos.Issues.Insert(ctx, issue); err != nil {
		if creditErr := s.repos.Stock.Credit(ctx, key, req.Quantity, req.ItemIDs); creditErr != nil {
			s.logger.Error("failed reversing debit after issue staging failure",
				zap.Error(creditErr), zap.String("item", key.ItemName))
		}
		return nil, err
	}

	s.publish(ctx, "issue_requested", issue)
	s.logger.Info("issue requested",
		zap.String("id", issue.ID.Hex()),
		zap.String("issuedTo", issue.IssuedTo),
		zap.Int("quantity", issue.Quantity))
	return issue, nil
}

// Acknowledge records the countersigned receipt. Re-uploading overwrites the
// previous signature rather than failing.
func (s *Service) Acknowledge(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	if strings.TrimSpace(receiptURL) == "" {
		return apperr.New(apperr.KindValidation, "signed receipt is required")
	}
	if err := s.repos.Issues.Acknowledge(ctx, id, receiptURL); err != nil {
		return err
	}
	s.logger.Info("issue acknowledged", zap.String("id", id.Hex()))
	return nil
}

// Approve merges the acknowledged issue into the outstanding-issue ledger.
// Lines toward the same location accumulate instead of multiplying.
func (s *Service) Approve(ctx context.Context, id primitive.ObjectID) error {
	issue, err := s.repos.Issues.TakeAcknowledged(ctx, id)
	if err != nil {
		return err
	}

	line := models.IssueLine{
		IssuedTo:   issue.IssuedTo,
		Quantity:   issue.Quantity,
		IssuedIDs:  issue.IssuedIDs,
		IssuedDate: s.now(),
	}
	if err := s.repos.Issued.Merge(ctx, issue.ItemKey, line); err != nil {
		if reinsertErr := s.repos.Issues.Insert(ctx, issue); reinsertErr != nil {
			s.logger.Error("failed re-staging issue after merge failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	s.publish(ctx, "issue_approved", issue)
	s.logger.Info("issue approved", zap.String("id", id.Hex()), zap.String("issuedTo", issue.IssuedTo))
	return nil
}

// Reject credits the reserved stock back by the exact debited quantity and
// ids, then records the denial in the rejection sink.
func (s *Service) Reject(ctx context.Context, id primitive.ObjectID, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return apperr.New(apperr.KindValidation, "rejection remarks are required")
	}

	issue, err := s.repos.Issues.Take(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Stock.Credit(ctx, issue.ItemKey, issue.Quantity, issue.IssuedIDs); err != nil {
		if reinsertErr := s.repos.Issues.Insert(ctx, issue); reinsertErr != nil {
			s.logger.Error("failed re-staging issue after credit failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	rej := &models.RejectedAsset{
		Action:     models.ActionIssueRejected,
		Payload:    issue,
		Remarks:    remarks,
		RejectedAt: s.now(),
	}
	if err := s.repos.Rejections.Insert(ctx, rej); err != nil {
		s.logger.Error("rejected issue not recorded in sink", zap.Error(err), zap.String("id", id.Hex()))
	}

	s.publish(ctx, "issue_rejected", issue)
	s.logger.Info("issue rejected", zap.String("id", id.Hex()))
	return nil
}

// Get returns one pending issue.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	return s.repos.Issues.Get(ctx, id)
}

// List returns all pending issues.
func (s *Service) List(ctx context.Context) ([]models.PendingIssue, error) {
	return s.repos.Issues.List(ctx)
}

func (s *Service) publish(ctx context.Context, action string, issue *models.PendingIssue) {
	event := models.TransitionEvent{
		AssetType:     issue.AssetType,
		AssetCategory: issue.AssetCategory,
		Action:        action,
		ActionTime:    s.now(),
		Fields: map[string]any{
			"issueId":  issue.ID.Hex(),
			"issuedTo": issue.IssuedTo,
			"quantity": issue.Quantity,
		},
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("notification sink unreachable", zap.Error(err), zap.String("action", action))
	}
}
