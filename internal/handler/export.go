package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ferrara94/CashCard-Microservice/internal/middleware"
	"github.com/ferrara94/CashCard-Microservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler downloads all of the caller's cards as CSV or XLSX.
type ExportHandler struct {
	Repo repository.CashCardRepository
}

func NewExportHandler(repo repository.CashCardRepository) *ExportHandler {
	return &ExportHandler{Repo: repo}
}

// CSV exports the caller's cards as a CSV attachment.
func (h *ExportHandler) CSV(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	cards, err := h.Repo.FindAllByOwner(principal.Username)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="cashcards.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "amount"})
	for i := range cards {
		_ = w.Write([]string{
			strconv.FormatInt(cards[i].ID, 10),
			strconv.FormatFloat(cards[i].Amount, 'f', 2, 64),
		})
	}
	w.Flush()
}

// XLSX exports the caller's cards as an Excel workbook.
func (h *ExportHandler) XLSX(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	cards, err := h.Repo.FindAllByOwner(principal.Username)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "CashCards"
	index, err := f.NewSheet(sheet)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheet, "A1", "id")
	_ = f.SetCellValue(sheet, "B1", "amount")
	for i := range cards {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), cards[i].ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), cards[i].Amount)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="cashcards.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
