package consigne

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const depositPath = "deposit"

var errEmptyProductCode = errors.New("empty product code")

// CreateDeposit opens a new deposit. Parameters use the backend naming of the
// two parties.
func (c *Client) CreateDeposit(ctx context.Context, providerPartnerID, receiverPartnerID int) (int, error) {
	const op = "create_deposit"

	body := CreateDepositRequest{
		ReceiverPartnerID: receiverPartnerID,
		ProviderPartnerID: providerPartnerID,
	}

	env, err := call[CreateDepositResponse](ctx, c, op, http.MethodPost, body, depositPath, "create")
	if err != nil {
		return 0, err
	}

	data, err := payload(op, env)
	if err != nil {
		return 0, err
	}

	return data.DepositID, nil
}

func (c *Client) GetDeposit(ctx context.Context, depositID int) (DepositSnapshot, error) {
	const op = "get_deposit"

	env, err := call[DepositSnapshot](ctx, c, op, http.MethodGet, nil, depositPath, strconv.Itoa(depositID))
	if err != nil {
		return DepositSnapshot{}, err
	}

	return payload(op, env)
}

func (c *Client) GetDepositLine(ctx context.Context, depositID, lineID int) (DepositLineRecord, error) {
	const op = "get_deposit_line"

	env, err := call[depositLineResponse](ctx, c, op, http.MethodGet, nil,
		depositPath, strconv.Itoa(depositID), strconv.Itoa(lineID))
	if err != nil {
		return DepositLineRecord{}, err
	}

	data, err := payload(op, env)
	if err != nil {
		return DepositLineRecord{}, err
	}

	return *data.Line, nil
}

// ReturnProduct records a scanned product code on the deposit. The caller
// must look at Returnable: the backend also records products it does not take
// back.
func (c *Client) ReturnProduct(ctx context.Context, depositID int, productCode string) (ReturnedProduct, error) {
	const op = "return_product"

	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return ReturnedProduct{}, errEmptyProductCode
	}

	env, err := call[ReturnedProduct](ctx, c, op, http.MethodGet, nil,
		depositPath, strconv.Itoa(depositID), "return", productCode)
	if err != nil {
		return ReturnedProduct{}, err
	}

	return payload(op, env)
}

func (c *Client) CancelLine(ctx context.Context, depositID, lineID int) error {
	_, err := call[json.RawMessage](ctx, c, "cancel_line", http.MethodGet, nil,
		depositPath, strconv.Itoa(depositID), "cancel", strconv.Itoa(lineID))

	return err
}

func (c *Client) CloseDeposit(ctx context.Context, depositID int) error {
	_, err := call[json.RawMessage](ctx, c, "close_deposit", http.MethodGet, nil,
		depositPath, strconv.Itoa(depositID), "close")

	return err
}

// PrintTicket asks the backend to print the deposit ticket. It is safe to
// call again after a failure or a success.
func (c *Client) PrintTicket(ctx context.Context, depositID int) error {
	_, err := call[json.RawMessage](ctx, c, "print_ticket", http.MethodGet, nil,
		depositPath, strconv.Itoa(depositID), "ticket")

	return err
}
