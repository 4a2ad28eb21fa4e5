package api

import (
	"encoding/json"
	"fmt"

	"github.com/0xcafe-io/iz"
	"github.com/finledger/finance_ledger/internal/ledger"
	"github.com/finledger/finance_ledger/logging"
)

type Api struct {
	Service *ledger.Ledger
}

func NewApi(service *ledger.Ledger) *Api {
	return &Api{
		Service: service,
	}
}

func (api *Api) SaveTransactionHandler(r *iz.Request) iz.Responder {
	var newTransactionReq CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&newTransactionReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newTransaction := ledger.CreateTransactionRequest{
		Date:     newTransactionReq.Date,
		Time:     newTransactionReq.Time,
		Title:    newTransactionReq.Title,
		Amount:   newTransactionReq.Amount,
		Category: newTransactionReq.Category,
		Notes:    newTransactionReq.Notes,
	}

	created, err := api.Service.SaveTransaction(r.Context(), newTransaction)
	if err != nil {
		msg := fmt.Sprintf("failed to create transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	return iz.Respond().Status(201).JSON(TransactionToHttp(created))
}

func (api *Api) ListTransactionsHandler(r *iz.Request) iz.Responder {
	ts, err := api.Service.GetAllTransactions(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to list transactions: %v", err)
		msg := fmt.Sprintf("failed to get transactions: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	tsForHttp := make([]TransactionItem, 0, len(ts))
	for _, t := range ts {
		tsForHttp = append(tsForHttp, TransactionToHttp(t))
	}
	return iz.Respond().Status(200).JSON(tsForHttp)
}

func (api *Api) GetTransactionByIdHandler(r *iz.Request) iz.Responder {
	tId := r.PathValue("id")

	t, err := api.Service.GetTransactionById(r.Context(), tId)
	if err != nil {
		msg := fmt.Sprintf("failed to get transaction by ID: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(TransactionToHttp(t))
}

func (api *Api) UpdateTransactionHandler(r *iz.Request) iz.Responder {
	tId := r.PathValue("id")

	var updateReq UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	fields := ledger.UpdateTransactionRequest{
		Date:     updateReq.Date,
		Time:     updateReq.Time,
		Title:    updateReq.Title,
		Amount:   updateReq.Amount,
		Category: updateReq.Category,
		Notes:    updateReq.Notes,
	}

	updated, err := api.Service.UpdateTransaction(r.Context(), tId, fields)
	if err != nil {
		msg := fmt.Sprintf("failed to update transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(TransactionToHttp(updated))
}

func (api *Api) DeleteTransactionHandler(r *iz.Request) iz.Responder {
	tId := r.PathValue("id")

	if err := api.Service.DeleteTransaction(r.Context(), tId); err != nil {
		msg := fmt.Sprintf("failed to delete transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "Transaction deleted"})
}

func (api *Api) ExpenseSummaryHandler(r *iz.Request) iz.Responder {
	summary, err := api.Service.ExpenseSummary(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to build expense summary: %v", err)
		msg := fmt.Sprintf("failed to get expense summary: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(SummaryToHttp(summary))
}

func (api *Api) IncomeSummaryHandler(r *iz.Request) iz.Responder {
	summary, err := api.Service.IncomeSummary(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to build income summary: %v", err)
		msg := fmt.Sprintf("failed to get income summary: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(SummaryToHttp(summary))
}

func (api *Api) HealthHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).Text("ok")
}
