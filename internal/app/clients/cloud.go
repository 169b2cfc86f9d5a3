package clients

import (
	"context"
	"fmt"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Product catalog categories understood by the upstream pricing API.
const (
	CategoryComputeInstance = "compute_instance"
	CategoryOSImage         = "os_image"
	CategoryBandwidth       = "bandwidth"
	CategoryVolumeType      = "volume_type"
	CategoryCrossConnect    = "cross_connect"
	CategoryIP              = "ip"
)

// Cloud is the upstream cloud REST API. It implements wizard.BatchSubmitter.
type Cloud interface {
	wizard.BatchSubmitter
	ListProjects(ctx context.Context) ([]wizard.Option, error)
	ListProducts(ctx context.Context, region, category string) ([]wizard.Option, error)
	ListSubnets(ctx context.Context, projectID, region string) ([]wizard.Option, error)
	ListSecurityGroups(ctx context.Context, projectID, region string) ([]wizard.Option, error)
	ListKeyPairs(ctx context.Context, projectID, region string) ([]wizard.Option, error)
	GetProfile(ctx context.Context) (*Profile, error)
}

// Profile is the caller's upstream account profile; the payment coordinator
// needs the email.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type cloudClient struct {
	rc *resty.Client
}

func NewCloud(cfg config.UpstreamConfig) Cloud {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}
	return &cloudClient{rc: rc}
}

// projectEntry, productEntry etc. mirror the upstream wire shapes. Product
// entries come in two forms: a plain resource or a priced wrapper whose
// identity lives under "product". normalize collapses both into
// wizard.Option once, at fetch time.
type projectEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"default_region"`
}

type productEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Product *struct {
		ID            string  `json:"id"`
		ProductableID string  `json:"productable_id"`
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
	} `json:"product"`
}

type resourceEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p productEntry) normalize() wizard.Option {
	if p.Product != nil {
		return wizard.Option{
			ID:         p.Product.ID,
			ResourceID: p.Product.ProductableID,
			Label:      firstNonEmpty(p.Product.Name, p.Name),
			Price:      p.Product.Price,
		}
	}
	return wizard.Option{ID: p.ID, ResourceID: p.ID, Label: p.Name, Price: p.Price}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *cloudClient) ListProjects(ctx context.Context) ([]wizard.Option, error) {
	var body struct {
		Data []projectEntry `json:"data"`
	}
	if err := c.get(ctx, "/v1/projects", nil, &body); err != nil {
		return nil, err
	}

	opts := make([]wizard.Option, len(body.Data))
	for i, p := range body.Data {
		opts[i] = wizard.Option{ID: p.ID, ResourceID: p.ID, Label: p.Name, Region: p.Region}
	}
	return opts, nil
}

func (c *cloudClient) ListProducts(ctx context.Context, region, category string) ([]wizard.Option, error) {
	var body struct {
		Data []productEntry `json:"data"`
	}
	params := map[string]string{"region": region, "category": category}
	if err := c.get(ctx, "/v1/products", params, &body); err != nil {
		return nil, err
	}

	opts := make([]wizard.Option, len(body.Data))
	for i, p := range body.Data {
		opts[i] = p.normalize()
		opts[i].Region = region
	}
	return opts, nil
}

func (c *cloudClient) ListSubnets(ctx context.Context, projectID, region string) ([]wizard.Option, error) {
	return c.listProjectResources(ctx, projectID, region, "subnets")
}

func (c *cloudClient) ListSecurityGroups(ctx context.Context, projectID, region string) ([]wizard.Option, error) {
	return c.listProjectResources(ctx, projectID, region, "security-groups")
}

func (c *cloudClient) ListKeyPairs(ctx context.Context, projectID, region string) ([]wizard.Option, error) {
	return c.listProjectResources(ctx, projectID, region, "key-pairs")
}

func (c *cloudClient) listProjectResources(ctx context.Context, projectID, region, resource string) ([]wizard.Option, error) {
	var body struct {
		Data []resourceEntry `json:"data"`
	}
	path := fmt.Sprintf("/v1/projects/%s/%s", projectID, resource)
	if err := c.get(ctx, path, map[string]string{"region": region}, &body); err != nil {
		return nil, err
	}

	opts := make([]wizard.Option, len(body.Data))
	for i, r := range body.Data {
		opts[i] = wizard.Option{ID: r.ID, ResourceID: r.ID, Label: r.Name, Region: region}
	}
	return opts, nil
}

func (c *cloudClient) GetProfile(ctx context.Context) (*Profile, error) {
	var body struct {
		Data Profile `json:"data"`
	}
	if err := c.get(ctx, "/v1/profile", nil, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// SubmitOrder posts the committed batch and returns the priced order intent.
func (c *cloudClient) SubmitOrder(ctx context.Context, batch wizard.OrderBatch) (*wizard.OrderIntent, error) {
	var body struct {
		Data wizard.OrderIntent `json:"data"`
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(batch).
		SetResult(&body).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("submit order batch: %w", err)
	}
	if resp.IsError() {
		logrus.Errorf("order submission rejected: %s %s", resp.Status(), resp.String())
		return nil, fmt.Errorf("order submission failed: %s", resp.Status())
	}

	return &body.Data, nil
}

func (c *cloudClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	req := c.rc.R().SetContext(ctx).SetResult(out)
	if params != nil {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: %s", path, resp.Status())
	}
	return nil
}
