// Package authapi adaptador HTTP hacia el proveedor de identidad externo
// (API REST estilo GoTrue) y bus de eventos de ciclo de vida en proceso.
package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/provider"
	pkgjwt "github.com/jhoicas/logistica-api/pkg/jwt"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

var _ provider.IdentityProvider = (*Client)(nil)

// Client adaptador del proveedor de identidad. Verifica el access token
// localmente (HS256, secreto compartido del proveedor) para responder
// GetSession sin red, y consulta la API solo para GetUser y SignOut.
type Client struct {
	baseURL    string
	anonKey    string
	jwtSecret  string
	httpClient *http.Client
	bus        *EventBus
	log        *logger.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewClient construye el adaptador. bus puede ser nil si nadie consume eventos.
func NewClient(baseURL, anonKey, jwtSecret string, bus *EventBus, log *logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		anonKey:   anonKey,
		jwtSecret: jwtSecret,
		httpClient: &http.Client{
			// Timeout de red propio; el coordinador impone además su tope duro.
			Timeout: 15 * time.Second,
		},
		bus: bus,
		log: log,
	}
}

// Adopt adopta un access token entregado por el transporte (el front lo
// obtiene del proveedor y se lo pasa a este agente). Si el token es válido
// emite SignedIn con el user id; un token inválido no cambia el estado.
func (c *Client) Adopt(token string) (string, error) {
	userID, _, exp, err := pkgjwt.Parse(c.jwtSecret, token)
	if err != nil {
		return "", fmt.Errorf("token rechazado: %w", err)
	}
	if !exp.IsZero() && time.Now().After(exp) {
		return "", fmt.Errorf("token expirado")
	}
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
	if c.bus != nil {
		c.bus.Emit(provider.AuthEvent{Kind: provider.EventSignedIn, UserID: userID})
	}
	return userID, nil
}

// GetSession devuelve la sesión activa o nil si no hay token vigente.
// No toca la red: la validez se deriva del token verificado localmente.
func (c *Client) GetSession(_ context.Context) (*provider.Session, error) {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token == "" {
		return nil, nil
	}
	userID, email, exp, err := pkgjwt.Parse(c.jwtSecret, token)
	if err != nil {
		// Token que dejó de validar (expiró, rotó el secreto): sin sesión.
		return nil, nil
	}
	if !exp.IsZero() && time.Now().After(exp) {
		return nil, nil
	}
	return &provider.Session{
		UserID:      userID,
		Email:       email,
		AccessToken: token,
		ExpiresAt:   exp,
	}, nil
}

// userResponse respuesta de GET /auth/v1/user del proveedor.
type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// GetUser consulta la identidad al proveedor. 401 se traduce a (nil, nil):
// sesión inexistente, no error de red.
func (c *Client) GetUser(ctx context.Context) (*entity.Identity, error) {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("consultar usuario: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("proveedor de identidad respondió %d: %s", resp.StatusCode, string(body))
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decodificar usuario: %w", err)
	}
	return &entity.Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.UserMetadata.FullName,
	}, nil
}

// SignOut revoca la sesión en el proveedor, olvida el token local y emite
// SignedOut. La limpieza local ocurre aunque la revocación remota falle.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.accessToken
	c.accessToken = ""
	c.mu.Unlock()

	var remoteErr error
	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
		if err == nil {
			c.setHeaders(req, token)
			resp, err := c.httpClient.Do(req)
			if err != nil {
				remoteErr = fmt.Errorf("logout remoto: %w", err)
			} else {
				resp.Body.Close()
			}
		}
	}

	if c.bus != nil {
		c.bus.Emit(provider.AuthEvent{Kind: provider.EventSignedOut})
	}
	return remoteErr
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
}
