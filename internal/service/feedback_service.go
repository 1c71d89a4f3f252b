package service

import (
	"context"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/pkg/events"
	"github.com/frontdesk/visitorapp/pkg/logger"
)

type FeedbackService interface {
	Submit(ctx context.Context, req *domain.FeedbackRequest) (*domain.Feedback, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	eventBus     events.Publisher
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository, eventBus events.Publisher) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		eventBus:     eventBus,
	}
}

func (s *feedbackService) Submit(ctx context.Context, req *domain.FeedbackRequest) (*domain.Feedback, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	feedback, err := s.feedbackRepo.Create(ctx, req)
	if err != nil {
		return nil, domain.UpstreamError("save feedback", err)
	}

	if err := s.eventBus.Publish(ctx, events.FeedbackReceived, events.FeedbackReceivedEvent{
		Name:  feedback.Name,
		Email: feedback.Email,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish feedback event", "error", err, "email", feedback.Email)
	}

	return feedback, nil
}
