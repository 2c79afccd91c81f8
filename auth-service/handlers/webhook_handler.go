package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"gorm.io/gorm"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models"
)

// WebhookHandler syncs users, organizations and memberships from the
// external identity provider. Events arrive svix-signed; an invalid
// signature is rejected before any payload parsing.
type WebhookHandler struct {
	db *gorm.DB
}

func NewWebhookHandler(db *gorm.DB) *WebhookHandler {
	return &WebhookHandler{db: db}
}

// identityEvent is the provider's envelope.
type identityEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email_address"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type organizationPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type membershipPayload struct {
	Organization organizationPayload `json:"organization"`
	User         userPayload         `json:"public_user_data"`
	Role         string              `json:"role"`
}

// POST /api/webhooks/identity
// @Summary Identity provider webhook
// @Description Receive signed user/organization/membership events
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Event processed"
// @Failure 401 {object} map[string]string "Invalid signature"
// @Router /webhooks/identity [post]
func (h *WebhookHandler) HandleIdentityEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	wh, err := svix.NewWebhook(config.GetConfig().IdentityWebhookSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook verifier unavailable"})
		return
	}
	if err := wh.Verify(payload, c.Request.Header); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}

	var handleErr error
	switch event.Type {
	case "user.created", "user.updated":
		handleErr = h.upsertUser(event.Data)
	case "user.deleted":
		handleErr = h.deleteUser(event.Data)
	case "organization.created", "organization.updated":
		handleErr = h.upsertOrganization(event.Data)
	case "organization.deleted":
		handleErr = h.deactivateOrganization(event.Data)
	case "organizationMembership.created", "organizationMembership.updated":
		handleErr = h.applyMembership(event.Data)
	case "organizationMembership.deleted":
		handleErr = h.removeMembership(event.Data)
	default:
		// Unknown event types are acknowledged so the provider does
		// not retry them.
		log.Printf("⚠️ Ignoring unhandled identity event type: %s", event.Type)
	}

	if handleErr != nil {
		log.Printf("❌ Failed to process identity event %s: %v", event.Type, handleErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event processed"})
}

func (h *WebhookHandler) upsertUser(data json.RawMessage) error {
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var user models.User
	err := h.db.Where("external_id = ?", p.ID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			ExternalID: p.ID,
			Email:      p.Email,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Role:       models.RoleViewer,
		}
		return h.db.Create(&user).Error
	}
	if err != nil {
		return err
	}

	user.Email = p.Email
	user.FirstName = p.FirstName
	user.LastName = p.LastName
	return h.db.Save(&user).Error
}

func (h *WebhookHandler) deleteUser(data json.RawMessage) error {
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	return h.db.Model(&models.User{}).
		Where("external_id = ?", p.ID).
		Update("status", "INACTIVE").Error
}

func (h *WebhookHandler) upsertOrganization(data json.RawMessage) error {
	var p organizationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var org models.Organization
	err := h.db.Where("external_id = ?", p.ID).First(&org).Error
	if err == gorm.ErrRecordNotFound {
		org = models.Organization{
			ExternalID: p.ID,
			Name:       p.Name,
			Slug:       p.Slug,
			Status:     "ACTIVE",
		}
		return h.db.Create(&org).Error
	}
	if err != nil {
		return err
	}

	org.Name = p.Name
	org.Slug = p.Slug
	return h.db.Save(&org).Error
}

func (h *WebhookHandler) deactivateOrganization(data json.RawMessage) error {
	var p organizationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	return h.db.Model(&models.Organization{}).
		Where("external_id = ?", p.ID).
		Update("status", "INACTIVE").Error
}

// providerRoles maps identity-provider membership roles onto local
// roles. Unknown provider roles fall back to viewer.
var providerRoles = map[string]models.Role{
	"org:admin":       models.RoleAdmin,
	"org:pptk":        models.RolePPTK,
	"org:bendahara":   models.RoleBendahara,
	"org:verifikator": models.RoleVerifikator,
	"org:member":      models.RoleViewer,
}

func (h *WebhookHandler) applyMembership(data json.RawMessage) error {
	var p membershipPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var org models.Organization
	if err := h.db.Where("external_id = ?", p.Organization.ID).First(&org).Error; err != nil {
		return err
	}

	role, ok := providerRoles[p.Role]
	if !ok {
		role = models.RoleViewer
	}

	return h.db.Model(&models.User{}).
		Where("external_id = ?", p.User.ID).
		Updates(map[string]interface{}{
			"organization_id": org.ID,
			"role":            role,
		}).Error
}

// removeMembership clears the user's organization and resets the role
// to viewer so a stale role cannot follow the user to a new tenant.
func (h *WebhookHandler) removeMembership(data json.RawMessage) error {
	var p membershipPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	return h.db.Model(&models.User{}).
		Where("external_id = ?", p.User.ID).
		Updates(map[string]interface{}{
			"organization_id": nil,
			"role":            models.RoleViewer,
		}).Error
}
