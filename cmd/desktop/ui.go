package main

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/app"
	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
)

type uiState struct {
	w         fyne.Window
	svc       *app.App
	sessionID string

	preview     *dataset.Dataset
	previewRows int

	input      *widget.Entry
	analyzeBtn *widget.Button
	clearBtn   *widget.Button
	status     *widget.Label
	idleStatus string
	emotion    *widget.Label
	reply      *widget.Label
	scores     *fyne.Container
	history    *fyne.Container
	previewTbl *widget.Table
}

func buildUI(a fyne.App, svc *app.App, sessionID string) *uiState {
	u := &uiState{
		w:           a.NewWindow("NeuroAid"),
		svc:         svc,
		sessionID:   sessionID,
		previewRows: svc.Config.Data.PreviewRows,
	}

	u.input = widget.NewMultiLineEntry()
	u.input.SetPlaceHolder("How are you feeling today?")
	u.input.Wrapping = fyne.TextWrapWord

	u.analyzeBtn = widget.NewButtonWithIcon("Analyze", theme.ConfirmIcon(), func() { u.onAnalyze() })
	u.clearBtn = widget.NewButtonWithIcon("Clear History", theme.DeleteIcon(), func() { u.onClear() })
	u.idleStatus = classifierStatus(svc.Classifier.Backend(), svc.Classifier.Model())
	u.status = widget.NewLabel(u.idleStatus)
	u.emotion = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	u.reply = widget.NewLabel("")
	u.reply.Wrapping = fyne.TextWrapWord
	u.scores = container.NewVBox()
	u.history = container.NewVBox()

	var errorLines []fyne.CanvasObject
	for _, le := range svc.Catalog.Errors() {
		lbl := widget.NewLabel(le.Error())
		lbl.Importance = widget.DangerImportance
		errorLines = append(errorLines, lbl)
	}

	if svc.Catalog.Empty() {
		blocked := widget.NewLabelWithStyle("No datasets could be loaded. Add CSV, TSV, TXT or JSON files to the data directory and restart.",
			fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
		blocked.Importance = widget.DangerImportance
		u.w.SetContent(container.NewVBox(append(errorLines, blocked)...))
		u.w.Resize(fyne.NewSize(720, 240))
		return u
	}

	u.preview, _ = svc.Catalog.First()
	u.previewTbl = widget.NewTable(
		func() (int, int) {
			if u.preview == nil {
				return 0, 0
			}
			return len(u.preview.Head(u.previewRows)) + 1, len(u.preview.Columns)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				lbl.SetText(u.preview.Columns[id.Col])
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			row := u.preview.Head(u.previewRows)[id.Row-1]
			if id.Col < len(row) {
				lbl.SetText(row[id.Col])
			} else {
				lbl.SetText("")
			}
		},
	)
	datasetSel := widget.NewSelect(svc.Catalog.Names(), func(name string) {
		if ds, ok := svc.Catalog.Find(name); ok {
			u.preview = ds
			u.previewTbl.Refresh()
		}
	})
	datasetSel.SetSelected(u.preview.Name)

	previewBox := container.NewGridWrap(fyne.NewSize(680, 180), u.previewTbl)
	details := widget.NewAccordion(
		widget.NewAccordionItem("Show raw data", previewBox),
		widget.NewAccordionItem("Confidence scores", u.scores),
		widget.NewAccordionItem("Conversation history", u.history),
	)

	content := container.NewVBox(
		append(errorLines,
			widget.NewLabelWithStyle("Dataset", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			datasetSel,
			widget.NewSeparator(),
			widget.NewLabelWithStyle("How are you feeling today?", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			u.input,
			container.NewGridWithColumns(2, u.analyzeBtn, u.clearBtn),
			u.status,
			u.emotion,
			u.reply,
			details,
		)...,
	)

	u.renderHistory()
	u.w.SetContent(container.NewVScroll(content))
	u.w.Resize(fyne.NewSize(760, 820))
	return u
}

func (u *uiState) onAnalyze() {
	text := u.input.Text
	u.setBusy(true)

	go func() {
		outcome, err := u.svc.Companion.Analyze(context.Background(), u.sessionID, text)
		fyne.Do(func() {
			defer u.setBusy(false)
			switch {
			case errors.Is(err, companion.ErrEmptyInput):
				dialog.ShowInformation("NeuroAid", "Please enter some text.", u.w)
			case err != nil:
				dialog.ShowError(err, u.w)
			default:
				u.showOutcome(outcome)
				u.input.SetText("")
			}
		})
	}()
}

func (u *uiState) onClear() {
	if err := u.svc.Companion.Clear(context.Background(), u.sessionID); err != nil {
		dialog.ShowError(err, u.w)
		return
	}
	u.renderHistory()
	u.status.SetText("History cleared.")
}

func (u *uiState) setBusy(busy bool) {
	if busy {
		u.analyzeBtn.Disable()
		u.clearBtn.Disable()
		u.status.SetText("Analyzing...")
		return
	}
	u.analyzeBtn.Enable()
	u.clearBtn.Enable()
	u.status.SetText(u.idleStatus)
}

func classifierStatus(backend, model string) string {
	return fmt.Sprintf("Classifier: %s (%s)", backend, model)
}

func (u *uiState) showOutcome(outcome companion.Outcome) {
	u.idleStatus = classifierStatus(outcome.Classification.Backend, outcome.Classification.Model)
	u.status.SetText(u.idleStatus)
	u.emotion.SetText("Detected emotion: " + analysis.ParseLabel(outcome.Record.Emotion).Title())
	u.reply.SetText("NeuroAid: " + outcome.Record.Response)

	u.scores.RemoveAll()
	for _, score := range outcome.Classification.Scores {
		bar := widget.NewProgressBar()
		bar.SetValue(score.Confidence)
		bar.TextFormatter = func(pct float64) func() string {
			return func() string { return fmt.Sprintf("%.2f%%", pct) }
		}(score.Percent())
		u.scores.Add(container.NewBorder(nil, nil, widget.NewLabel(score.Label.Title()), nil, bar))
	}
	u.scores.Refresh()
	u.renderHistory()
}

func (u *uiState) renderHistory() {
	u.history.RemoveAll()
	records, err := u.svc.Companion.History(context.Background(), u.sessionID)
	if err != nil || len(records) == 0 {
		u.history.Add(widget.NewLabel("No conversation history yet."))
		u.history.Refresh()
		return
	}

	for _, record := range records {
		entry := widget.NewLabel(fmt.Sprintf("You: %s\nEmotion: %s\nNeuroAid: %s",
			record.Input, analysis.ParseLabel(record.Emotion).Title(), record.Response))
		entry.Wrapping = fyne.TextWrapWord
		u.history.Add(entry)
		u.history.Add(widget.NewSeparator())
	}
	u.history.Refresh()
}
