package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с CatalogService (каталог пакетов и услуг)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента CatalogService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetPackage получает пакет обследования по ID
func (c *Client) GetPackage(ctx context.Context, packageID int64) (*ConsultationPackage, error) {
	endpoint := fmt.Sprintf("%s/internal/packages/%d", c.baseURL, packageID)

	var pkg ConsultationPackage
	if err := c.getJSON(ctx, endpoint, &pkg, ErrPackageNotFound); err != nil {
		return nil, err
	}

	return &pkg, nil
}

// GetService получает услугу по ID
func (c *Client) GetService(ctx context.Context, serviceID int64) (*Service, error) {
	endpoint := fmt.Sprintf("%s/internal/services/%d", c.baseURL, serviceID)

	var svc Service
	if err := c.getJSON(ctx, endpoint, &svc, ErrServiceNotFound); err != nil {
		return nil, err
	}

	return &svc, nil
}

// SearchPackages ищет пакеты по подстроке названия, возвращает их ID.
// Используется листингом для свободного текстового поиска.
func (c *Client) SearchPackages(ctx context.Context, query string) ([]int64, error) {
	endpoint := fmt.Sprintf("%s/internal/packages/search?q=%s", c.baseURL, url.QueryEscape(query))

	var resp SearchPackagesResponse
	if err := c.getJSON(ctx, endpoint, &resp, nil); err != nil {
		return nil, err
	}

	return resp.IDs, nil
}

// GetPackageWithGracefulDegradation получает пакет с graceful degradation.
// При недоступности CatalogService возвращает ErrServiceDegraded.
// Применимо ТОЛЬКО для отображения (цена, название): проверка вместимости
// обязана ходить за актуальным maxSlotPerPeriod и деградацию не использует.
func (c *Client) GetPackageWithGracefulDegradation(ctx context.Context, packageID int64) (*ConsultationPackage, error) {
	pkg, err := c.GetPackage(ctx, packageID)
	if err != nil {
		if err == ErrPackageNotFound {
			return nil, err
		}
		c.log.Error("CatalogService unavailable, applying graceful degradation for package_id=%d: %v", packageID, err)
		return nil, fmt.Errorf("%w: package_id=%d, error=%v", ErrServiceDegraded, packageID, err)
	}
	return pkg, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ.
// notFoundErr возвращается на 404 (nil - трактовать 404 как ошибку ответа).
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		if notFoundErr != nil {
			return notFoundErr
		}
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
