package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
)

// Actor is the authenticated user performing an operation, as supplied by
// the auth middleware.
type Actor struct {
	UID   string
	Email string
	Name  string
}

func (a Actor) displayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return "A student"
}

// ClaimInput carries the claimant's free-text claim details.
type ClaimInput struct {
	ItemID  string
	Message string
	Proof   string
}

// UserDirectory resolves user profiles for contact exchange.
type UserDirectory interface {
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
}

// Mailer delivers best-effort email. Implementations must treat missing
// configuration as a no-op.
type Mailer interface {
	Send(to, subject, text, html string) error
}

// ClaimGate is the quota check consulted before a claim is accepted.
type ClaimGate interface {
	AllowClaim(ctx context.Context, userID string) error
}

// Service orchestrates the claim lifecycle: submit, review, resolve. All
// status changes go through the Executor inside a store transaction; email
// and contact enrichment run after commit and never fail the operation.
type Service struct {
	store    store.Store
	executor *Executor
	users    UserDirectory
	mailer   Mailer
	gate     ClaimGate
	log      *logrus.Logger
}

func NewService(st store.Store, exec *Executor, users UserDirectory, mailer Mailer, gate ClaimGate, log *logrus.Logger) *Service {
	return &Service{store: st, executor: exec, users: users, mailer: mailer, gate: gate, log: log}
}

func decodeItem(doc store.Document) (*models.Item, error) {
	var item models.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, err
	}
	item.ID = doc.ID
	return &item, nil
}

func (s *Service) getItemTx(tx store.Tx, id string) (*models.Item, error) {
	doc, err := tx.Get(store.Items, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeItem(doc)
}

// SubmitClaim moves the item to CLAIM_REQUESTED and notifies the owner.
// The status write and the owner notification commit in one transaction:
// if either fails, neither happens. A racing second claimant re-reads
// CLAIM_REQUESTED inside its own transaction and fails validation.
func (s *Service) SubmitClaim(ctx context.Context, actor Actor, in ClaimInput) (*models.Notification, error) {
	if s.gate != nil {
		if err := s.gate.AllowClaim(ctx, actor.UID); err != nil {
			return nil, err
		}
	}

	var item *models.Item
	var created *models.Notification
	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		var err error
		item, err = s.getItemTx(tx, in.ItemID)
		if err != nil {
			return err
		}
		if item.UserID == actor.UID {
			return fmt.Errorf("cannot claim own item: %w", ErrForbidden)
		}
		if err := s.executor.Apply(ctx, item, status.ClaimRequested, tx); err != nil {
			return err
		}

		n := &models.Notification{
			UserID:        item.UserID,
			Type:          models.NotificationClaimRequest,
			Title:         "Someone claimed your item",
			Message:       claimMessage(actor, item, in),
			ItemID:        item.ID,
			RelatedUserID: actor.UID,
			Status:        models.NotificationActionRequired,
			Priority:      models.PriorityHigh,
			CreatedAt:     time.Now().UTC(),
		}
		data, err := store.ToMap(n)
		if err != nil {
			return err
		}
		n.ID, err = tx.Create(store.Notifications, data)
		created = n
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emailOwner(item, actor)
	return created, nil
}

func claimMessage(actor Actor, item *models.Item, in ClaimInput) string {
	msg := fmt.Sprintf("%s believes %q belongs to them.", actor.displayName(), item.Title)
	if in.Message != "" {
		msg += " Message: " + in.Message
	}
	if in.Proof != "" {
		msg += " Proof: " + in.Proof
	}
	return msg
}

// ApproveClaim verifies the pending claim on an item. Only the owner may
// approve. After the transition commits, the claimant's identity and
// contact details are copied onto the item so the two parties can arrange
// a handover; that enrichment is best-effort.
func (s *Service) ApproveClaim(ctx context.Context, actor Actor, itemID string) error {
	item, err := s.review(ctx, actor, itemID, status.Verified)
	if err != nil {
		return err
	}
	s.enrichClaimant(ctx, item)
	return nil
}

// RejectClaim turns the pending claim down. Only the owner may reject.
func (s *Service) RejectClaim(ctx context.Context, actor Actor, itemID string) error {
	item, err := s.review(ctx, actor, itemID, status.Rejected)
	if err != nil {
		return err
	}
	if n, err := s.latestClaimNotification(ctx, item.ID); err == nil {
		if err := s.store.Update(ctx, store.Notifications, n.ID, map[string]any{"read": true, "status": ""}); err != nil {
			s.log.WithError(err).WithField("notification", n.ID).Warn("mark claim notification read failed")
		}
	}
	s.notifyClaimDecision(ctx, item, models.NotificationClaimRejected,
		"Claim not approved",
		fmt.Sprintf("Your claim on %q was not approved. The owner did not recognize your proof.", item.Title))
	return nil
}

func (s *Service) review(ctx context.Context, actor Actor, itemID string, next status.Status) (*models.Item, error) {
	var item *models.Item
	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		var err error
		item, err = s.getItemTx(tx, itemID)
		if err != nil {
			return err
		}
		if item.UserID != actor.UID {
			return fmt.Errorf("only the owner can review claims: %w", ErrForbidden)
		}
		return s.executor.Apply(ctx, item, next, tx)
	})
	return item, err
}

// UpdateStatus is the generic status entry point, used for the direct
// SECURED/RESOLVED paths ("mark handled without a formal claim"). It always
// funnels through the Executor. The owner may set any permitted status; the
// verified claimant may additionally mark the item RESOLVED.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, itemID string, next status.Status) error {
	var item *models.Item
	err := s.store.RunTransaction(ctx, func(tx store.Tx) error {
		var err error
		item, err = s.getItemTx(tx, itemID)
		if err != nil {
			return err
		}
		if item.UserID != actor.UID {
			claimantResolving := next == status.Resolved && item.ClaimantID != "" && item.ClaimantID == actor.UID
			if !claimantResolving {
				return fmt.Errorf("not allowed to change this item's status: %w", ErrForbidden)
			}
		}
		return s.executor.Apply(ctx, item, next, tx)
	})
	if err != nil {
		return err
	}

	if next == status.Resolved && item.ClaimantID != "" {
		s.notifyClaimDecision(ctx, item, models.NotificationItemResolved,
			"Case closed",
			fmt.Sprintf("The case for %q is closed. Thanks for using Lost2Found!", item.Title))
	}
	return nil
}

// Resolve closes the case. Either the owner or the verified claimant may
// call it once the claim is VERIFIED (or the item SECURED).
func (s *Service) Resolve(ctx context.Context, actor Actor, itemID string) error {
	return s.UpdateStatus(ctx, actor, itemID, status.Resolved)
}

// latestClaimNotification recovers the most recent claim-request
// notification for an item, which carries the claimant's identity.
func (s *Service) latestClaimNotification(ctx context.Context, itemID string) (*models.Notification, error) {
	docs, err := s.store.Query(ctx, store.Notifications,
		store.Where("itemId", "==", itemID),
		store.Where("type", "==", models.NotificationClaimRequest),
	)
	if err != nil {
		return nil, err
	}
	var latest *models.Notification
	for _, doc := range docs {
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.ID
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = &n
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

// enrichClaimant copies the claimant's identity and contact details onto
// the item after approval. Failures are logged; the VERIFIED transition has
// already committed and stands.
func (s *Service) enrichClaimant(ctx context.Context, item *models.Item) {
	n, err := s.latestClaimNotification(ctx, item.ID)
	if err != nil {
		s.log.WithError(err).WithField("item", item.ID).Warn("claimant enrichment: no claim notification found")
		return
	}

	fields := map[string]any{"claimantId": n.RelatedUserID}
	var claimantEmail string
	if s.users != nil {
		if user, err := s.users.GetUserByFirebaseUID(n.RelatedUserID); err == nil {
			fields["claimantEmail"] = user.Email
			fields["claimantName"] = user.Name
			claimantEmail = user.Email
		} else {
			s.log.WithError(err).WithField("claimant", n.RelatedUserID).Warn("claimant enrichment: profile lookup failed")
		}
	}
	if err := s.store.Update(ctx, store.Items, item.ID, fields); err != nil {
		s.log.WithError(err).WithField("item", item.ID).Warn("claimant enrichment: item update failed")
		return
	}
	if err := s.store.Update(ctx, store.Notifications, n.ID, map[string]any{"read": true, "status": ""}); err != nil {
		s.log.WithError(err).WithField("notification", n.ID).Warn("claimant enrichment: mark-read failed")
	}

	s.notifyClaimDecision(ctx, item, models.NotificationClaimApproved,
		"Your claim was approved",
		fmt.Sprintf("Your claim on %q was approved. Check the item page for contact details.", item.Title))
	if claimantEmail != "" {
		s.sendMail(claimantEmail, "Your claim was approved",
			fmt.Sprintf("Good news! Your claim on %q was approved. Log in to Lost2Found to arrange the handover.", item.Title))
	}
}

// notifyClaimDecision creates an informational notification for the current
// claimant and, when their email is known, mails them too. Best-effort.
func (s *Service) notifyClaimDecision(ctx context.Context, item *models.Item, ntype, title, message string) {
	claimantID := item.ClaimantID
	if claimantID == "" {
		if n, err := s.latestClaimNotification(ctx, item.ID); err == nil {
			claimantID = n.RelatedUserID
		}
	}
	if claimantID == "" {
		return
	}

	n := &models.Notification{
		UserID:        claimantID,
		Type:          ntype,
		Title:         title,
		Message:       message,
		ItemID:        item.ID,
		RelatedUserID: item.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	data, err := store.ToMap(n)
	if err == nil {
		_, err = s.store.Create(ctx, store.Notifications, data)
	}
	if err != nil {
		s.log.WithError(err).WithField("item", item.ID).Warn("claim decision notification failed")
	}

	if item.ClaimantEmail != "" {
		s.sendMail(item.ClaimantEmail, title, message)
	}
}

func (s *Service) emailOwner(item *models.Item, actor Actor) {
	if s.users == nil {
		return
	}
	owner, err := s.users.GetUserByFirebaseUID(item.UserID)
	if err != nil {
		s.log.WithError(err).WithField("owner", item.UserID).Warn("owner email lookup failed")
		return
	}
	s.sendMail(owner.Email, "Someone claimed your item",
		fmt.Sprintf("%s submitted a claim on %q. Open Lost2Found to review it.", actor.displayName(), item.Title))
}

func (s *Service) sendMail(to, subject, text string) {
	if s.mailer == nil || to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, text, ""); err != nil {
		s.log.WithError(err).WithField("to", to).Warn("email send failed")
	}
}
