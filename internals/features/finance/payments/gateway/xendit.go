// file: internals/features/finance/payments/gateway/xendit.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

/* =========================================================
   Xendit adapter (invoice + disbursement)
========================================================= */

type XenditAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewXenditAdapter(apiKey, baseURL string) *XenditAdapter {
	return &XenditAdapter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type xenditInvoiceResp struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (x *XenditAdapter) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error) {
	body := map[string]any{
		"external_id":      in.ExternalID,
		"amount":           in.AmountIDR,
		"payer_email":      in.PayerEmail,
		"description":      in.Description,
		"invoice_duration": int(in.Duration / time.Second),
	}
	if len(in.Methods) > 0 {
		body["payment_methods"] = in.Methods
	}

	var out xenditInvoiceResp
	if err := x.do(ctx, http.MethodPost, "/v2/invoices", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("xendit: empty invoice id")
	}
	return invoiceFromXendit(&out), nil
}

func (x *XenditAdapter) GetInvoice(ctx context.Context, gatewayInvoiceID string) (*Invoice, error) {
	var out xenditInvoiceResp
	if err := x.do(ctx, http.MethodGet, "/v2/invoices/"+gatewayInvoiceID, nil, &out); err != nil {
		return nil, err
	}
	return invoiceFromXendit(&out), nil
}

func (x *XenditAdapter) ExpireInvoice(ctx context.Context, gatewayInvoiceID string) (*Invoice, error) {
	var out xenditInvoiceResp
	if err := x.do(ctx, http.MethodPost, "/invoices/"+gatewayInvoiceID+"/expire!", nil, &out); err != nil {
		return nil, err
	}
	return invoiceFromXendit(&out), nil
}

type xenditDisbursementResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (x *XenditAdapter) CreateDisbursement(ctx context.Context, in CreateDisbursementInput) (*Disbursement, error) {
	body := map[string]any{
		"external_id":         in.ExternalID,
		"amount":              in.AmountIDR,
		"bank_code":           in.BankCode,
		"account_number":      in.AccountNumber,
		"account_holder_name": in.AccountHolderName,
		"description":         in.Description,
	}
	var out xenditDisbursementResp
	if err := x.do(ctx, http.MethodPost, "/disbursements", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("xendit: empty disbursement id")
	}
	return &Disbursement{GatewayDisbursementID: out.ID, Status: out.Status}, nil
}

func (x *XenditAdapter) GetDisbursement(ctx context.Context, gatewayDisbursementID string) (*Disbursement, error) {
	var out xenditDisbursementResp
	if err := x.do(ctx, http.MethodGet, "/disbursements/"+gatewayDisbursementID, nil, &out); err != nil {
		return nil, err
	}
	return &Disbursement{GatewayDisbursementID: out.ID, Status: out.Status}, nil
}

func (x *XenditAdapter) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.SetBasicAuth(x.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("xendit %s %s: %s (%s)", method, path, apiErr.Message, apiErr.ErrorCode)
		}
		return fmt.Errorf("xendit %s %s: %s", method, path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func invoiceFromXendit(r *xenditInvoiceResp) *Invoice {
	return &Invoice{
		GatewayInvoiceID: r.ID,
		Status:           r.Status,
		PaymentURL:       r.InvoiceURL,
		ExpiresAt:        r.ExpiryDate,
	}
}
