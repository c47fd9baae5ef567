package worker

// report_worker.go
// Builds the end-of-shift closure report: ledger-derived sales per method,
// cash refunds, drawer expectation vs count. Generates the PDF and mails it
// to the configured report address. Best-effort, never blocks shift closure.

import (
	"context"
	"encoding/json"
	"fmt"

	"restopos/internal/infra"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ShiftReportJobPayload is the job envelope for an end-of-shift report.
type ShiftReportJobPayload struct {
	ShiftID string `json:"shift_id"`
}

type ReportWorker struct {
	shiftRepo      repository.ShiftRepository
	refundRepo     repository.RefundRepository
	mailer         *infra.Mailer
	pdfStoragePath string
	reportEmail    string
}

func NewReportWorker(
	shiftRepo repository.ShiftRepository,
	refundRepo repository.RefundRepository,
	mailer *infra.Mailer,
	pdfStoragePath string,
	reportEmail string,
) *ReportWorker {
	return &ReportWorker{
		shiftRepo:      shiftRepo,
		refundRepo:     refundRepo,
		mailer:         mailer,
		pdfStoragePath: pdfStoragePath,
		reportEmail:    reportEmail,
	}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ShiftReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}
	shiftID, err := uuid.Parse(payload.ShiftID)
	if err != nil {
		log.Error().Str("shift_id", payload.ShiftID).Msg("report_worker: invalid shift_id")
		return
	}

	shift, err := w.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		log.Error().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: shift not found")
		return
	}

	sums, err := w.shiftRepo.SumPaymentsByMethod(ctx, shiftID)
	if err != nil {
		log.Error().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: ledger sum failed")
		return
	}
	orders, err := w.shiftRepo.CountSettledOrders(ctx, shiftID)
	if err != nil {
		log.Error().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: order count failed")
		return
	}
	refunds, err := w.refundRepo.SumApprovedCashByShift(ctx, shiftID)
	if err != nil {
		log.Error().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: refund sum failed")
		return
	}

	data := infra.ShiftReportData{
		Shift:         shift,
		CashSales:     sums[model.MethodCash],
		CardSales:     sums[model.MethodCard],
		TransferSales: sums[model.MethodTransfer],
		CashRefunds:   refunds,
		TotalOrders:   int(orders),
	}

	pdfPath, err := infra.GenerateShiftReportPDF(data, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("shift_id", payload.ShiftID).Msg("report_worker: closure PDF generated")

	if w.reportEmail == "" {
		return
	}
	operator := ""
	if shift.Operator != nil {
		operator = shift.Operator.Name
	}
	subject := fmt.Sprintf("Cierre de turno — %s", shift.OpenedAt.Format("02/01/2006"))
	body := fmt.Sprintf("Adjunto el reporte de cierre de turno.\nCajero: %s\nPedidos: %d", operator, orders)
	if err := w.mailer.SendShiftReport(w.reportEmail, subject, body, pdfPath); err != nil {
		log.Warn().Err(err).Str("shift_id", payload.ShiftID).Msg("report_worker: email send failed")
		return
	}
	log.Info().Str("to", w.reportEmail).Str("shift_id", payload.ShiftID).Msg("report_worker: closure report emailed")
}
