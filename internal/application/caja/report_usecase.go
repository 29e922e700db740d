package caja

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// ReportUseCase genera el PDF de un arqueo de caja.
type ReportUseCase struct {
	cajas     repository.CajaRepository
	movs      repository.MovimientoCajaRepository
	cierres   repository.CierreCajaRepository
	users     repository.UserRepository
	generator ClosingPDFGenerator
}

// NewReportUseCase construye el caso de uso inyectando sus dependencias.
func NewReportUseCase(
	cajas repository.CajaRepository,
	movs repository.MovimientoCajaRepository,
	cierres repository.CierreCajaRepository,
	users repository.UserRepository,
	generator ClosingPDFGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		cajas:     cajas,
		movs:      movs,
		cierres:   cierres,
		users:     users,
		generator: generator,
	}
}

// DownloadClosingPDF arma los datos del cierre y devuelve (pdfBytes, filename).
// El cierre debe pertenecer a la caja indicada.
func (uc *ReportUseCase) DownloadClosingPDF(ctx context.Context, cajaID, cierreID string) ([]byte, string, error) {
	cierre, err := uc.cierres.GetByID(ctx, cierreID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cierre: %w", err)
	}
	if cierre == nil || cierre.CajaID != cajaID {
		return nil, "", domain.NotFound("cierre %s no encontrado", cierreID)
	}
	c, err := uc.cajas.GetByID(ctx, cajaID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener caja: %w", err)
	}
	if c == nil {
		return nil, "", domain.NotFound("caja %s no encontrada", cajaID)
	}
	totals, err := uc.movs.TotalsByMethod(ctx, cajaID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: totales por método: %w", err)
	}

	userName := cierre.UserID
	if u, uErr := uc.users.GetByID(ctx, cierre.UserID); uErr == nil && u != nil {
		userName = u.Name
	}

	pdfBytes, err := uc.generator.GenerateClosingPDF(ctx, ClosingReport{
		Caja:     c,
		Cierre:   cierre,
		UserName: userName,
		Totals:   totals,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename := fmt.Sprintf("cierre_%s_%s.pdf", strings.ReplaceAll(c.Name, " ", "_"), cierre.CreatedAt.Format("20060102_1504"))
	return pdfBytes, filename, nil
}
