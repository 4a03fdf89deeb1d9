// internal/app/manager/relations/relationmgr.go

// Package relationmgr links contacts to portfolios through join rows and
// links join rows to communications through the communication's ordered
// contact list.
package relationmgr

import (
	"context"
	"errors"

	commstore "github.com/purplesmurf1998/crm-api/internal/app/store/communications"
	contactstore "github.com/purplesmurf1998/crm-api/internal/app/store/contacts"
	cipstore "github.com/purplesmurf1998/crm-api/internal/app/store/contactsinportfolios"
	portfoliostore "github.com/purplesmurf1998/crm-api/internal/app/store/portfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AttachInput is the body of an attach-contact request.
type AttachInput struct {
	Role          string         `json:"role" validate:"required"`
	Description   string         `json:"description"`
	InactiveSince *inputval.Date `json:"inactiveSince"`
}

type Manager struct {
	portfolios *portfoliostore.Store
	contacts   *contactstore.Store
	joins      *cipstore.Store
	comms      *commstore.Store
}

func New(db *mongo.Database) *Manager {
	return &Manager{
		portfolios: portfoliostore.New(db),
		contacts:   contactstore.New(db),
		joins:      cipstore.New(db),
		comms:      commstore.New(db),
	}
}

func (m *Manager) bothExist(ctx context.Context, portfolio, contact primitive.ObjectID) error {
	pOK, err := m.portfolios.Exists(ctx, portfolio)
	if err != nil {
		return err
	}
	cOK, err := m.contacts.Exists(ctx, contact)
	if err != nil {
		return err
	}
	if !pOK || !cOK {
		return apperr.NotFound("Missing portfolio or missing contact or both")
	}
	return nil
}

// AttachContact creates a join row linking contact to portfolio with a role.
// Attaching the same pair twice creates two rows.
func (m *Manager) AttachContact(ctx context.Context, portfolio, contact primitive.ObjectID, in AttachInput) (models.ContactInPortfolio, error) {
	if err := m.bothExist(ctx, portfolio, contact); err != nil {
		return models.ContactInPortfolio{}, err
	}
	if err := inputval.Struct(in); err != nil {
		return models.ContactInPortfolio{}, err
	}
	cp := models.ContactInPortfolio{
		Portfolio:   portfolio,
		Contact:     contact,
		Role:        in.Role,
		Description: in.Description,
	}
	if in.InactiveSince != nil && !in.InactiveSince.IsZero() {
		t := in.InactiveSince.Time
		cp.InactiveSince = &t
	}
	return m.joins.Create(ctx, cp)
}

// UpdateMembership patches the join row linking contact to portfolio.
func (m *Manager) UpdateMembership(ctx context.Context, portfolio, contact primitive.ObjectID, p cipstore.Patch) (models.ContactInPortfolio, error) {
	if err := inputval.Struct(p); err != nil {
		return models.ContactInPortfolio{}, err
	}
	cp, err := m.joins.UpdateByPair(ctx, portfolio, contact, p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ContactInPortfolio{}, apperr.NotFound("Contact %s is not in portfolio %s", contact.Hex(), portfolio.Hex())
	}
	return cp, err
}

// ListMemberships lists join rows. A zero portfolio lists every row.
func (m *Manager) ListMemberships(ctx context.Context, portfolio primitive.ObjectID, q listquery.Query) (listquery.Result, error) {
	return listquery.Run(ctx, m.joins.ListSpec(portfolio), q)
}

func (m *Manager) communication(ctx context.Context, id primitive.ObjectID) error {
	if _, err := m.comms.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("Communication not found with id of %s", id.Hex())
		}
		return err
	}
	return nil
}

// AttachToCommunication appends a join row id to a communication's contact
// list. The same id may be appended more than once.
func (m *Manager) AttachToCommunication(ctx context.Context, commID, cpID primitive.ObjectID) (models.Communication, error) {
	if err := m.communication(ctx, commID); err != nil {
		return models.Communication{}, err
	}
	if _, err := m.joins.GetByID(ctx, cpID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Communication{}, apperr.NotFound("Contact in portfolio not found with id of %s", cpID.Hex())
		}
		return models.Communication{}, err
	}
	c, err := m.comms.PushContact(ctx, commID, cpID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Communication{}, apperr.NotFound("Communication not found with id of %s", commID.Hex())
	}
	return c, err
}

// DetachFromCommunication cuts the contact list at the first occurrence of
// cpID. That entry and every entry after it are dropped and returned as
// removed.
func (m *Manager) DetachFromCommunication(ctx context.Context, commID, cpID primitive.ObjectID) (models.Communication, []primitive.ObjectID, error) {
	if err := m.communication(ctx, commID); err != nil {
		return models.Communication{}, nil, err
	}
	c, removed, err := m.comms.TruncateContactsAt(ctx, commID, cpID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Communication{}, nil, apperr.NotFound("Contact in portfolio %s is not attached to communication %s", cpID.Hex(), commID.Hex())
	}
	if err != nil {
		return models.Communication{}, nil, err
	}
	return c, removed, nil
}
