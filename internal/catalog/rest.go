// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/hookhost/internal/model"
	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"
)

// Option type codes understood by the remote catalog.
const (
	OptionTypeString = 3
	OptionTypeBool   = 5
	OptionTypeNumber = 10
)

// ErrCatalogRejected is returned when the remote service answers a catalog
// replacement with a non-2xx status.
var ErrCatalogRejected = errors.New("catalog replacement rejected")

// CommandPayload is the wire form of a command spec.
type CommandPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []OptionPayload `json:"options,omitempty"`
}

// OptionPayload is the wire form of an option spec.
type OptionPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type"`
	Required    bool   `json:"required"`
}

// RESTCatalog replaces the remote catalog over HTTP.
type RESTCatalog struct {
	client        *resty.Client
	applicationID string
}

// NewRESTCatalog returns a RESTCatalog talking to baseURL.
func NewRESTCatalog(baseURL, applicationID, token string, timeout time.Duration) *RESTCatalog {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &RESTCatalog{client: client, applicationID: applicationID}
}

// Close releases the underlying HTTP client.
func (r *RESTCatalog) Close() error {
	return r.client.Close()
}

// ReplaceCommands implements Catalog.
func (r *RESTCatalog) ReplaceCommands(ctx context.Context, specs []model.CommandSpec) error {
	body, err := Payload(specs)
	if err != nil {
		return err
	}

	res, err := r.client.R().
		SetContext(ctx).
		SetPathParam("application_id", r.applicationID).
		SetBody(body).
		Put("/applications/{application_id}/commands")
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s: %s", ErrCatalogRejected, res.Status(), res.String())
	}
	return nil
}

// Payload converts specs to their wire form.
func Payload(specs []model.CommandSpec) ([]CommandPayload, error) {
	out := make([]CommandPayload, 0, len(specs))
	for _, spec := range specs {
		cmd := CommandPayload{Name: spec.Name, Description: spec.Description}
		for _, opt := range spec.Options {
			code, err := typeCode(opt.Type)
			if err != nil {
				return nil, fmt.Errorf("command %q option %q: %w", spec.Name, opt.Name, err)
			}
			cmd.Options = append(cmd.Options, OptionPayload{
				Name:        opt.Name,
				Description: opt.Description,
				Type:        code,
				Required:    opt.Required,
			})
		}
		out = append(out, cmd)
	}
	return out, nil
}

func typeCode(ty cty.Type) (int, error) {
	switch {
	case ty.Equals(cty.String):
		return OptionTypeString, nil
	case ty.Equals(cty.Bool):
		return OptionTypeBool, nil
	case ty.Equals(cty.Number):
		return OptionTypeNumber, nil
	default:
		return 0, fmt.Errorf("unsupported option type %s", ty.FriendlyName())
	}
}
