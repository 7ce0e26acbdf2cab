package core

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEmailSize is the inbox cost of every generated email
const DefaultEmailSize = 1

// urgentChance is the probability that a non-urgent category is flagged urgent
const urgentChance = 0.1

// bucket is one slice of a cumulative distribution. A draw below upTo selects
// either the category or, when sub is set, a second draw over sub.
type bucket struct {
	upTo     float64
	category Category
	sub      []bucket
}

var (
	earlyLegit = []bucket{
		{upTo: 0.4, category: CategoryWork},
		{upTo: 0.7, category: CategoryPersonal},
		{upTo: 0.9, category: CategorySubscription},
		{upTo: 1.0, category: CategoryAccount},
	}
	earlySpam = []bucket{
		{upTo: 0.4, category: CategoryPromotional},
		{upTo: 0.7, category: CategoryPhishing},
		{upTo: 0.9, category: CategoryScam},
		{upTo: 1.0, category: CategoryMalware},
	}
	midLegit = []bucket{
		{upTo: 0.3, category: CategoryWork},
		{upTo: 0.6, category: CategoryPersonal},
		{upTo: 0.8, category: CategorySubscription},
		{upTo: 1.0, category: CategoryAccount},
	}
	midSpam = []bucket{
		{upTo: 0.3, category: CategoryPromotional},
		{upTo: 0.6, category: CategoryPhishing},
		{upTo: 0.8, category: CategoryScam},
		{upTo: 1.0, category: CategoryMalware},
	}
	lateLegit = []bucket{
		{upTo: 0.25, category: CategoryWork},
		{upTo: 0.5, category: CategoryPersonal},
		{upTo: 0.75, category: CategorySubscription},
		{upTo: 1.0, category: CategoryAccount},
	}
	lateSpam = []bucket{
		{upTo: 0.25, category: CategoryPromotional},
		{upTo: 0.5, category: CategoryPhishing},
		{upTo: 0.75, category: CategoryScam},
		{upTo: 1.0, category: CategoryMalware},
	}

	// levels 1-3
	earlyTier = []bucket{
		{upTo: 0.8, sub: earlyLegit},
		{upTo: 1.0, sub: earlySpam},
	}
	// levels 4-6
	midTier = []bucket{
		{upTo: 0.1, category: CategoryUrgent},
		{upTo: 0.2, category: CategoryLargeAttachment},
		{upTo: 0.5, sub: midSpam},
		{upTo: 1.0, sub: midLegit},
	}
	// levels 7+
	lateTier = []bucket{
		{upTo: 0.15, category: CategoryUrgent},
		{upTo: 0.25, category: CategoryChain},
		{upTo: 0.35, category: CategoryLargeAttachment},
		{upTo: 0.6, sub: lateSpam},
		{upTo: 1.0, sub: lateLegit},
	}
)

var (
	workSenders     = []string{"Boss", "Manager", "HR Dept", "IT Support", "Colleague"}
	workSubjects    = []string{"Project Update", "Meeting Request", "Report Due", "System Update", "Task Assignment"}
	personalSenders = []string{"Friend", "Family", "Spouse", "School", "Doctor"}
	personalSubject = []string{"Hello!", "Weekend Plans", "Important News", "Check-in", "Invitation"}
	spamSenders     = []string{"Prize Dept", "Security Alert", "Account Service", "Lottery Win", "Unknown"}
	spamSubjects    = []string{"You Won!", "Account Alert", "Urgent Action Required", "Special Offer", "Security Warning"}
)

// tierFor returns the category distribution for a player level
func tierFor(level int) []bucket {
	switch {
	case level <= 3:
		return earlyTier
	case level <= 6:
		return midTier
	default:
		return lateTier
	}
}

// EmailGenerator produces emails whose category follows a level dependent
// distribution
type EmailGenerator struct {
	rng    *Random
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewEmailGenerator creates a generator drawing from rng
func NewEmailGenerator(rng *Random, logger *zap.Logger) *EmailGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailGenerator{
		rng:    rng,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Generate creates a new email for the given level
func (g *EmailGenerator) Generate(level int) Email {
	category := g.pickCategory(level)
	urgent := g.rng.Float64() < urgentChance

	email := Email{
		ID:         g.newID(),
		Size:       DefaultEmailSize,
		Category:   category,
		ReceivedAt: g.now(),
	}

	switch category {
	case CategoryWork:
		email.Sender = g.rng.Pick(workSenders)
		email.Subject = g.rng.Pick(workSubjects)
		email.Body = "This is a work-related email requiring your attention."
	case CategoryPersonal:
		email.Sender = g.rng.Pick(personalSenders)
		email.Subject = g.rng.Pick(personalSubject)
		email.Body = "This is a personal email from " + email.Sender + "."
	case CategorySubscription:
		email.Sender = "Newsletter"
		email.Subject = "Your Weekly Update"
		email.Body = "Thank you for subscribing to our newsletter."
	case CategoryAccount:
		email.Sender = "Account Services"
		email.Subject = "Account Notification"
		email.Body = "This is a notification about your account."
	case CategoryPhishing:
		email.Sender = g.rng.Pick(spamSenders)
		email.Subject = g.rng.Pick(spamSubjects)
		email.Body = "Please click this link to claim your prize!"
	case CategoryPromotional:
		email.Sender = "Marketing"
		email.Subject = "Special Offer Inside!"
		email.Body = "Limited time offer! Buy now!"
	case CategoryScam:
		email.Sender = "Prince"
		email.Subject = "Business Proposal"
		email.Body = "I need your help to transfer $10,000,000..."
	case CategoryMalware:
		email.Sender = "System Admin"
		email.Subject = "Security Update Required"
		email.Body = "Please download this attachment immediately."
	case CategoryUrgent:
		email.Sender = g.rng.Pick(workSenders)
		email.Subject = "URGENT: " + g.rng.Pick(workSubjects)
		email.Body = "This requires your immediate attention!"
		urgent = true
	case CategoryChain:
		email.Sender = "Multiple Recipients"
		email.Subject = "Re: Re: Re: Important Discussion"
		email.Body = "This is part of an ongoing discussion thread."
	case CategoryLargeAttachment:
		email.Sender = g.rng.Pick(workSenders)
		email.Subject = "Files Attached"
		email.Body = "I've attached the requested files."
	}
	email.Urgent = urgent

	g.logger.Debug("Generated email",
		zap.String("id", email.ID),
		zap.String("category", string(email.Category)),
		zap.Bool("urgent", email.Urgent),
		zap.Int("level", level))

	return email
}

// pickCategory draws a category from the tier for level
func (g *EmailGenerator) pickCategory(level int) Category {
	buckets := tierFor(level)
	for {
		draw := g.rng.Float64()
		chosen := buckets[len(buckets)-1]
		for _, b := range buckets {
			if draw < b.upTo {
				chosen = b
				break
			}
		}
		if chosen.sub == nil {
			return chosen.category
		}
		buckets = chosen.sub
	}
}
