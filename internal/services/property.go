package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/domain/listing"
	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/textutil"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

type PropertyImageInput struct {
	ImageURL string `json:"image_url"`
	ThumbURL string `json:"thumb_url"`
	Order    int    `json:"ordem"`
}

// PropertyInput is used for both create and partial update; nil fields are
// left untouched on update.
type PropertyInput struct {
	Title         *string               `json:"titulo"`
	Description   *string               `json:"descricao"`
	Price         *Number               `json:"preco"`
	CondoFee      *Number               `json:"condominio"`
	PropertyTax   *Number               `json:"iptu"`
	Location      *string               `json:"localizacao"`
	PostalCode    *string               `json:"cep"`
	Type          *string               `json:"tipo"`
	Bedrooms      *int                  `json:"quartos"`
	Bathrooms     *int                  `json:"banheiros"`
	ParkingSpots  *int                  `json:"vagas"`
	Area          *string               `json:"area"`
	Status        *string               `json:"status"`
	VideoURL      *string               `json:"video_url"`
	MainImageURL  *string               `json:"main_image_url"`
	ThumbImageURL *string               `json:"thumb_image_url"`
	IsFeatured    *int                  `json:"is_destaque"`
	Images        *[]PropertyImageInput `json:"images"`
}

type ListPropertiesInput struct {
	Search   string
	Status   string
	Type     string
	Featured *bool
	Skip     int
	Limit    int
}

type PropertyService interface {
	Create(ctx context.Context, in PropertyInput) (*types.Property, error)
	List(ctx context.Context, in ListPropertiesInput) ([]*types.Property, error)
	Featured(ctx context.Context, limit int) ([]*types.Property, error)
	// Get is the public detail read: it counts one view.
	Get(ctx context.Context, id uint) (*types.Property, error)
	Update(ctx context.Context, id uint, in PropertyInput) (*types.Property, error)
	Delete(ctx context.Context, id uint) error
	ReorderImages(ctx context.Context, id uint, imageIDs []uint) (*types.Property, error)
}

type propertyService struct {
	db           *gorm.DB
	log          *logger.Logger
	propertyRepo repos.PropertyRepo
	imageRepo    repos.PropertyImageRepo
	viewRepo     repos.PropertyViewRepo
	audit        AuditService
	emit         Emitter
	metrics      *observability.Metrics
}

func NewPropertyService(
	db *gorm.DB,
	log *logger.Logger,
	propertyRepo repos.PropertyRepo,
	imageRepo repos.PropertyImageRepo,
	viewRepo repos.PropertyViewRepo,
	audit AuditService,
	emit Emitter,
	metrics *observability.Metrics,
) PropertyService {
	return &propertyService{
		db:           db,
		log:          log.With("service", "PropertyService"),
		propertyRepo: propertyRepo,
		imageRepo:    imageRepo,
		viewRepo:     viewRepo,
		audit:        audit,
		emit:         emit,
		metrics:      metrics,
	}
}

func (in PropertyInput) validate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return apierr.Invalid("Título é obrigatório")
	}
	for _, n := range []*int{in.Bedrooms, in.Bathrooms, in.ParkingSpots} {
		if n != nil && *n < 0 {
			return apierr.Invalid("Quartos, banheiros e vagas não podem ser negativos")
		}
	}
	for _, n := range []*Number{in.Price, in.CondoFee, in.PropertyTax} {
		if n != nil && *n < 0 {
			return apierr.Invalid("Valores não podem ser negativos")
		}
	}
	if in.Area != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Area)) > 50 {
		return apierr.Invalid("Área deve ter no máximo 50 caracteres")
	}
	if in.Status != nil && !listing.IsValidPropertyStatus(strings.TrimSpace(*in.Status)) {
		return apierr.Invalid("Status inválido")
	}
	if in.IsFeatured != nil && *in.IsFeatured != 0 && *in.IsFeatured != 1 {
		return apierr.Invalid("is_destaque deve ser 0 ou 1")
	}
	if in.Images != nil {
		for _, img := range *in.Images {
			if strings.TrimSpace(img.ImageURL) == "" {
				return apierr.Invalid("image_url é obrigatório")
			}
		}
	}
	return nil
}

// sortedImages returns the images ordered by ordem, keeping input order on ties.
func sortedImages(in []PropertyImageInput) []types.PropertyImage {
	out := make([]types.PropertyImage, 0, len(in))
	for _, img := range in {
		out = append(out, types.PropertyImage{
			ImageURL: strings.TrimSpace(img.ImageURL),
			ThumbURL: strings.TrimSpace(img.ThumbURL),
			Order:    img.Order,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (ps *propertyService) Create(ctx context.Context, in PropertyInput) (*types.Property, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apierr.Invalid("Título é obrigatório")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(*in.Title)
	prop := &types.Property{
		Title:         title,
		Slug:          textutil.Slugify(title),
		Description:   trimmed(in.Description),
		Location:      trimmed(in.Location),
		PostalCode:    textutil.Digits(trimmed(in.PostalCode)),
		Type:          listing.NormalizeType(trimmed(in.Type)),
		Status:        listing.StatusAtivo,
		VideoURL:      trimmed(in.VideoURL),
		MainImageURL:  trimmed(in.MainImageURL),
		ThumbImageURL: trimmed(in.ThumbImageURL),
	}
	if in.Price != nil {
		prop.Price = float64(*in.Price)
	}
	if in.CondoFee != nil {
		prop.CondoFee = float64(*in.CondoFee)
	}
	if in.PropertyTax != nil {
		prop.PropertyTax = float64(*in.PropertyTax)
	}
	if in.Area != nil {
		prop.Area = strings.TrimSpace(*in.Area)
	}
	if in.Bedrooms != nil {
		prop.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		prop.Bathrooms = *in.Bathrooms
	}
	if in.ParkingSpots != nil {
		prop.ParkingSpots = *in.ParkingSpots
	}
	if in.Status != nil {
		prop.Status = strings.TrimSpace(*in.Status)
	}
	if in.IsFeatured != nil {
		prop.IsFeatured = *in.IsFeatured
	}
	if in.Images != nil {
		prop.Images = sortedImages(*in.Images)
	}
	applyMainImageFallback(prop)

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := ps.propertyRepo.Create(dbc, []*types.Property{prop}); err != nil {
			return fmt.Errorf("create property: %w", err)
		}
		return ps.audit.Record(dbc, rd, AuditEntry{
			Action:       audit.ActionCreateProperty,
			ResourceType: audit.ResourceProperty,
			ResourceID:   &prop.ID,
			Details:      fmt.Sprintf("Imóvel '%s' criado", prop.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	ps.changed(ctx, "created", prop.ID)
	return prop, nil
}

// applyMainImageFallback promotes the lowest-ordem image to main/thumb when
// no main image was given.
func applyMainImageFallback(prop *types.Property) {
	if prop.MainImageURL != "" || len(prop.Images) == 0 {
		return
	}
	first := prop.Images[0]
	for _, img := range prop.Images[1:] {
		if img.Order < first.Order {
			first = img
		}
	}
	prop.MainImageURL = first.ImageURL
	if prop.ThumbImageURL == "" {
		prop.ThumbImageURL = first.ThumbURL
		if prop.ThumbImageURL == "" {
			prop.ThumbImageURL = first.ImageURL
		}
	}
}

func (ps *propertyService) List(ctx context.Context, in ListPropertiesInput) ([]*types.Property, error) {
	filter := repos.PropertyFilter{
		Search:   strings.TrimSpace(in.Search),
		Status:   strings.TrimSpace(in.Status),
		Type:     strings.TrimSpace(in.Type),
		Featured: in.Featured,
		Skip:     in.Skip,
		Limit:    clampLimit(in.Limit),
	}
	if filter.Status != "" && !listing.IsValidPropertyStatus(filter.Status) {
		return nil, apierr.Invalid("Status inválido")
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return ps.propertyRepo.List(dbctx.Context{Ctx: ctx}, filter)
}

func (ps *propertyService) Featured(ctx context.Context, limit int) ([]*types.Property, error) {
	featured := true
	return ps.List(ctx, ListPropertiesInput{Status: listing.StatusAtivo, Featured: &featured, Limit: limit})
}

func (ps *propertyService) Get(ctx context.Context, id uint) (*types.Property, error) {
	var out *types.Property
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		prop, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if prop == nil {
			return apierr.NotFound("Property not found")
		}
		if err := ps.propertyRepo.IncrementViews(dbc, id); err != nil {
			return fmt.Errorf("increment views: %w", err)
		}
		if _, err := ps.viewRepo.Create(dbc, []*types.PropertyView{{PropertyID: id, ViewedAt: time.Now()}}); err != nil {
			return fmt.Errorf("record view: %w", err)
		}
		prop.ViewsCount++
		out = prop
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.metrics.IncPropertyView()
	return out, nil
}

func (ps *propertyService) Update(ctx context.Context, id uint, in PropertyInput) (*types.Property, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *types.Property
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if current == nil {
			return apierr.NotFound("Property not found")
		}
		oldPrice := current.Price

		updates := in.updates()
		if in.Images != nil {
			imgs := sortedImages(*in.Images)
			rows := make([]*types.PropertyImage, 0, len(imgs))
			for i := range imgs {
				rows = append(rows, &imgs[i])
			}
			if _, err := ps.imageRepo.ReplaceForProperty(dbc, id, rows); err != nil {
				return fmt.Errorf("replace images: %w", err)
			}
			if in.MainImageURL == nil && current.MainImageURL == "" && len(imgs) > 0 {
				candidate := &types.Property{Images: imgs, ThumbImageURL: current.ThumbImageURL}
				applyMainImageFallback(candidate)
				updates["main_image_url"] = candidate.MainImageURL
				updates["thumb_image_url"] = candidate.ThumbImageURL
			}
		}
		if err := ps.propertyRepo.UpdateFields(dbc, id, updates); err != nil {
			return fmt.Errorf("update property: %w", err)
		}

		fresh, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("reload property: %w", err)
		}
		out = fresh

		entry := AuditEntry{
			Action:       audit.ActionUpdateProperty,
			ResourceType: audit.ResourceProperty,
			ResourceID:   &id,
			Details:      fmt.Sprintf("Imóvel '%s' atualizado", fresh.Title),
			Changes:      auditableChanges(updates, in.Images != nil),
		}
		if in.Price != nil && float64(*in.Price) != oldPrice {
			entry.Action = audit.ActionUpdatePrice
			entry.Details = fmt.Sprintf("Preço alterado de %s para %s", formatAmount(oldPrice), formatAmount(float64(*in.Price)))
		}
		return ps.audit.Record(dbc, rd, entry)
	})
	if err != nil {
		return nil, err
	}
	ps.changed(ctx, "updated", id)
	return out, nil
}

// updates maps the provided fields to their column names.
func (in PropertyInput) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		u["titulo"] = title
		u["slug"] = textutil.Slugify(title)
	}
	setString := func(col string, v *string) {
		if v != nil {
			u[col] = strings.TrimSpace(*v)
		}
	}
	setString("descricao", in.Description)
	setString("localizacao", in.Location)
	setString("video_url", in.VideoURL)
	setString("main_image_url", in.MainImageURL)
	setString("thumb_image_url", in.ThumbImageURL)
	setString("area", in.Area)
	if in.PostalCode != nil {
		u["cep"] = textutil.Digits(*in.PostalCode)
	}
	if in.Type != nil {
		u["tipo"] = listing.NormalizeType(*in.Type)
	}
	if in.Status != nil {
		u["status"] = strings.TrimSpace(*in.Status)
	}
	for col, n := range map[string]*Number{"preco": in.Price, "condominio": in.CondoFee, "iptu": in.PropertyTax} {
		if f := numberPtr(n); f != nil {
			u[col] = *f
		}
	}
	for col, n := range map[string]*int{"quartos": in.Bedrooms, "banheiros": in.Bathrooms, "vagas": in.ParkingSpots, "is_destaque": in.IsFeatured} {
		if n != nil {
			u[col] = *n
		}
	}
	return u
}

func auditableChanges(updates map[string]interface{}, imagesReplaced bool) map[string]interface{} {
	out := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "data:") {
			v = "[inline image]"
		}
		out[k] = v
	}
	if imagesReplaced {
		out["images"] = "replaced"
	}
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (ps *propertyService) Delete(ctx context.Context, id uint) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("Could not validate credentials")
	}
	if !rd.IsAdmin() {
		return apierr.Forbidden("Apenas administradores podem excluir imóveis")
	}
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		prop, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if prop == nil {
			return apierr.NotFound("Property not found")
		}
		if err := ps.audit.Record(dbc, rd, AuditEntry{
			Action:       audit.ActionDeleteProperty,
			ResourceType: audit.ResourceProperty,
			ResourceID:   &id,
			Details:      fmt.Sprintf("Imóvel '%s' excluído", prop.Title),
		}); err != nil {
			return err
		}
		if err := ps.propertyRepo.Delete(dbc, id); err != nil {
			return fmt.Errorf("delete property: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ps.changed(ctx, "deleted", id)
	return nil
}

func (ps *propertyService) ReorderImages(ctx context.Context, id uint, imageIDs []uint) (*types.Property, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	var out *types.Property
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		prop, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if prop == nil {
			return apierr.NotFound("Property not found")
		}
		if !sameImageSet(prop.Images, imageIDs) {
			return apierr.Invalid("A lista de imagens não corresponde às imagens do imóvel")
		}
		for order, imageID := range imageIDs {
			if err := ps.imageRepo.UpdateOrder(dbc, imageID, order); err != nil {
				return fmt.Errorf("update image order: %w", err)
			}
		}
		if err := ps.audit.Record(dbc, rd, AuditEntry{
			Action:       audit.ActionUpdateProperty,
			ResourceType: audit.ResourceProperty,
			ResourceID:   &id,
			Details:      fmt.Sprintf("Ordem das imagens do imóvel '%s' atualizada", prop.Title),
			Changes:      map[string]any{"image_order": imageIDs},
		}); err != nil {
			return err
		}
		fresh, err := ps.propertyRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("reload property: %w", err)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.changed(ctx, "updated", id)
	return out, nil
}

func sameImageSet(images []types.PropertyImage, ids []uint) bool {
	if len(images) != len(ids) {
		return false
	}
	want := make(map[uint]bool, len(images))
	for _, img := range images {
		want[img.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}

func (ps *propertyService) changed(ctx context.Context, action string, id uint) {
	emitTo(ctx, ps.emit, realtime.EventPropertyChanged,
		map[string]any{"action": action, "id": id},
		realtime.ChannelPublic, realtime.ChannelCRM)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
