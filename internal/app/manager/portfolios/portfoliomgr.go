// internal/app/manager/portfolios/portfoliomgr.go

// Package portfoliomgr keeps a portfolio and its sub-profile consistent.
// A portfolio of type Succession owns one Succession document and a
// portfolio of type Institutional owns one Institutional document. The
// manager creates the sub-profile before the portfolio, applies sub-profile
// patches before the portfolio patch, and deletes both together.
//
// None of these sequences run in a transaction. A failure part way through
// can leave an orphaned sub-profile behind.
package portfoliomgr

import (
	"context"
	"errors"

	institutionalstore "github.com/purplesmurf1998/crm-api/internal/app/store/institutionals"
	portfoliostore "github.com/purplesmurf1998/crm-api/internal/app/store/portfolios"
	successionstore "github.com/purplesmurf1998/crm-api/internal/app/store/successions"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CreateInput is the body of a portfolio create. The sub-profile fields sit
// beside the portfolio fields; only the set matching PortType is used.
type CreateInput struct {
	PortName        string               `json:"portName"`
	PortNumber      string               `json:"portNumber"`
	PortType        string               `json:"portType"`
	PortDescription string               `json:"portDescription"`
	Manager         primitive.ObjectID   `json:"manager"`
	Associates      []primitive.ObjectID `json:"associates"`
	ClosedAt        *inputval.Date       `json:"closedAt"`
	LastContacted   *inputval.Date       `json:"lastContacted"`

	ClientName  string         `json:"clientName"`
	DateOfDeath *inputval.Date `json:"dateOfDeath"`
	TrustRole   string         `json:"trustRole"`

	Market string `json:"market"`
	Status string `json:"status"`
}

func (in CreateInput) portfolio() models.Portfolio {
	p := models.Portfolio{
		PortName:        in.PortName,
		PortNumber:      in.PortNumber,
		PortType:        models.PortType(in.PortType),
		PortDescription: in.PortDescription,
		Manager:         in.Manager,
		Associates:      in.Associates,
	}
	if in.ClosedAt != nil && !in.ClosedAt.IsZero() {
		t := in.ClosedAt.Time
		p.ClosedAt = &t
	}
	if in.LastContacted != nil && !in.LastContacted.IsZero() {
		t := in.LastContacted.Time
		p.LastContacted = &t
	}
	return p
}

func (in CreateInput) succession() models.Succession {
	s := models.Succession{ClientName: in.ClientName, TrustRole: in.TrustRole}
	if in.DateOfDeath != nil {
		s.DateOfDeath = in.DateOfDeath.Time
	}
	return s
}

func (in CreateInput) institutional() models.Institutional {
	return models.Institutional{Market: in.Market, Status: in.Status}
}

// SuccessionUpdate targets one succession document by id.
type SuccessionUpdate struct {
	ID   primitive.ObjectID     `json:"id"`
	Data successionstore.Patch `json:"data"`
}

// InstitutionalUpdate targets one institutional document by id.
type InstitutionalUpdate struct {
	ID   primitive.ObjectID        `json:"id"`
	Data institutionalstore.Patch `json:"data"`
}

// UpdateInput is the body of a portfolio update. The top-level fields are
// the portfolio patch; a portfolio's sub-profile reference cannot be changed
// through it.
type UpdateInput struct {
	portfoliostore.Patch

	PortType      *string              `json:"portType"`
	Succession    *SuccessionUpdate    `json:"succession"`
	Institutional *InstitutionalUpdate `json:"institutional"`
}

type Manager struct {
	portfolios     *portfoliostore.Store
	successions    *successionstore.Store
	institutionals *institutionalstore.Store
	log            *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Manager {
	return &Manager{
		portfolios:     portfoliostore.New(db),
		successions:    successionstore.New(db),
		institutionals: institutionalstore.New(db),
		log:            log,
	}
}

func notFound(id primitive.ObjectID) error {
	return apperr.NotFound("Portfolio not found with id of %s", id.Hex())
}

func duplicate(err error) error {
	return apperr.Wrap(apperr.KindValidation, err, "Duplicate field value entered")
}

// Create stores the sub-profile selected by PortType and then the portfolio
// that references it. Any type other than Succession or Institutional fails
// with InvalidPortfolioType.
func (m *Manager) Create(ctx context.Context, in CreateInput) (models.PortfolioView, error) {
	p := in.portfolio()
	if p.PortType != models.PortTypeSuccession && p.PortType != models.PortTypeInstitutional {
		return models.PortfolioView{}, apperr.InvalidPortfolioType(in.PortType)
	}
	if err := inputval.Struct(p); err != nil {
		return models.PortfolioView{}, err
	}

	var profile models.Profile
	if p.PortType == models.PortTypeSuccession {
		s := in.succession()
		if err := inputval.Struct(s); err != nil {
			return models.PortfolioView{}, err
		}
		created, err := m.successions.Create(ctx, s)
		if err != nil {
			return models.PortfolioView{}, err
		}
		p.Succession = &created.ID
		profile = &created
	} else {
		i := in.institutional()
		if err := inputval.Struct(i); err != nil {
			return models.PortfolioView{}, err
		}
		created, err := m.institutionals.Create(ctx, i)
		if err != nil {
			return models.PortfolioView{}, err
		}
		p.Institutional = &created.ID
		profile = &created
	}

	created, err := m.portfolios.Create(ctx, p)
	if err != nil {
		m.discardProfile(ctx, profile)
		if errors.Is(err, portfoliostore.ErrDuplicatePortfolio) {
			return models.PortfolioView{}, duplicate(err)
		}
		return models.PortfolioView{}, err
	}
	return models.NewPortfolioView(created, profile), nil
}

// discardProfile removes a sub-profile whose portfolio could not be stored.
func (m *Manager) discardProfile(ctx context.Context, profile models.Profile) {
	var err error
	switch sp := profile.(type) {
	case *models.Succession:
		_, err = m.successions.Delete(ctx, sp.ID)
	case *models.Institutional:
		_, err = m.institutionals.Delete(ctx, sp.ID)
	}
	if err != nil {
		m.log.Warn("orphaned sub-profile after failed portfolio create", zap.Error(err))
	}
}

// List runs a portfolio listing with sub-profiles and users populated.
func (m *Manager) List(ctx context.Context, q listquery.Query) (listquery.Result, error) {
	return listquery.Run(ctx, m.portfolios.ListSpec(), q)
}

// Get returns one portfolio populated the same way as List.
func (m *Manager) Get(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	spec := m.portfolios.ListSpec()
	spec.Scope = bson.M{"_id": id}
	doc, err := listquery.One(ctx, spec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	return doc, err
}

// Update applies any sub-profile patches and then the portfolio patch. The
// stored portfolio type cannot change.
func (m *Manager) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (models.PortfolioView, error) {
	current, err := m.portfolios.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PortfolioView{}, notFound(id)
	}
	if err != nil {
		return models.PortfolioView{}, err
	}
	if in.PortType != nil && models.PortType(*in.PortType) != current.PortType {
		return models.PortfolioView{}, apperr.InvalidPortfolioType(*in.PortType)
	}
	if err := inputval.Struct(in); err != nil {
		return models.PortfolioView{}, err
	}

	if su := in.Succession; su != nil {
		if _, err := m.successions.Update(ctx, su.ID, su.Data); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.PortfolioView{}, apperr.NotFound("Succession not found with id of %s", su.ID.Hex())
			}
			return models.PortfolioView{}, err
		}
	}
	if iu := in.Institutional; iu != nil {
		if _, err := m.institutionals.Update(ctx, iu.ID, iu.Data); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.PortfolioView{}, apperr.NotFound("Institutional not found with id of %s", iu.ID.Hex())
			}
			return models.PortfolioView{}, err
		}
	}

	updated, err := m.portfolios.Update(ctx, id, in.Patch)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.PortfolioView{}, notFound(id)
	case errors.Is(err, portfoliostore.ErrDuplicatePortfolio):
		return models.PortfolioView{}, duplicate(err)
	case err != nil:
		return models.PortfolioView{}, err
	}
	return m.view(ctx, updated)
}

// view loads the sub-profile a portfolio references.
func (m *Manager) view(ctx context.Context, p models.Portfolio) (models.PortfolioView, error) {
	ref, ok := p.ProfileRef()
	if !ok {
		return models.NewPortfolioView(p, nil), nil
	}
	var profile models.Profile
	switch p.PortType {
	case models.PortTypeSuccession:
		s, err := m.successions.GetByID(ctx, ref)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return models.PortfolioView{}, err
		}
		if err == nil {
			profile = &s
		}
	case models.PortTypeInstitutional:
		i, err := m.institutionals.GetByID(ctx, ref)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return models.PortfolioView{}, err
		}
		if err == nil {
			profile = &i
		}
	}
	return models.NewPortfolioView(p, profile), nil
}

// Delete removes a portfolio and its sub-profile. Contacts, join rows and
// communications are not touched.
func (m *Manager) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.portfolios.Delete(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(id)
	}
	return err
}
