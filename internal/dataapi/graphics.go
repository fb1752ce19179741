package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// GraphicsDevice maps a PCI vendor/adapter hex pair to display names.
// The pair is the unique key at the data service.
type GraphicsDevice struct {
	VendorHex   string `json:"vendor_hex"`
	AdapterHex  string `json:"adapter_hex"`
	VendorName  string `json:"vendor_name"`
	AdapterName string `json:"adapter_name"`
}

// GraphicsDevicesResult is the answer of a graphics device lookup.
type GraphicsDevicesResult struct {
	Hits  []GraphicsDevice `json:"hits"`
	Total int              `json:"total"`
}

// GraphicsDevicesService wraps the graphics device lookup table.
type GraphicsDevicesService struct {
	client *Client
}

// Get looks a device up by its vendor/adapter hex pair.
func (s *GraphicsDevicesService) Get(ctx context.Context, vendorHex, adapterHex string) (*GraphicsDevicesResult, error) {
	s.client.recordClassFetch("GraphicsDevices", cache.OutcomeMiss)

	query := url.Values{}
	query.Set("vendor_hex", vendorHex)
	query.Set("adapter_hex", adapterHex)

	result := new(GraphicsDevicesResult)
	if err := s.client.get(ctx, "/graphics_devices/", query, result); err != nil {
		return nil, err
	}

	return result, nil
}

// Post writes a batch of devices in one call. Partial success policy is the
// data service's business; the whole batch travels together.
func (s *GraphicsDevicesService) Post(ctx context.Context, devices []GraphicsDevice) (bool, error) {
	if err := s.client.send(ctx, http.MethodPost, "/graphics_devices/", nil, devices, nil); err != nil {
		return false, err
	}

	return true, nil
}
