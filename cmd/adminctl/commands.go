package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/service"
)

var loginCmd = &cobra.Command{
	Use:   "login <token>",
	Short: "Store a bearer token for later commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		var user *model.User
		if email != "" {
			user = &model.User{Email: email}
		}
		if err := store.Save(args[0], user); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session saved.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return store.Clear()
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview how a CSV splits into dated campaign batches",
	RunE:  runPlan,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Create one campaign per company, template and plan day",
	Long: `Calculates the plan for the CSV and then creates every campaign in
order: company, then template, then plan day. Each day is offset from the
scheduled date by --interval hours. A failed create does not stop the rest.
Interrupting stops before the next create.

Example:
  adminctl schedule --csv 65f0 --date 2026-06-01T09:00 \
    --company acme:tplA,tplB --company globex:tplC --interval 24`,
	RunE: runSchedule,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Verify an emailed OTP to unlock edit mode",
	RunE:  runUnlock,
}

func init() {
	loginCmd.Flags().String("email", "", "email of the logged in user")

	for _, c := range []*cobra.Command{planCmd, scheduleCmd} {
		c.Flags().String("csv", "", "CSV file id (required)")
		c.Flags().Int("batch-size", service.DefaultBatchSize, "emails per campaign")
		c.Flags().String("date", "", "scheduled date, RFC 3339 or YYYY-MM-DDTHH:MM (read in TIMEZONE, default UTC)")
		c.Flags().String("email-limit", "", "cap on emails to use from the CSV")
		_ = c.MarkFlagRequired("csv")
	}
	scheduleCmd.Flags().StringArray("company", nil, "companyId:templateId[,templateId...] (repeatable)")
	scheduleCmd.Flags().Int("interval", service.DefaultIntervalHours, "hours between plan days (1, 6, 12, 24, 48, 72)")

	unlockCmd.Flags().String("email", "", "authorized email to send the OTP to")
	_ = unlockCmd.MarkFlagRequired("email")
}

func planInputs(cmd *cobra.Command) service.PlanInputs {
	csv, _ := cmd.Flags().GetString("csv")
	batch, _ := cmd.Flags().GetInt("batch-size")
	date, _ := cmd.Flags().GetString("date")
	limit, _ := cmd.Flags().GetString("email-limit")
	return service.PlanInputs{SelectedCsv: csv, BatchSize: batch, ScheduledDate: date, EmailLimit: limit}
}

func runPlan(cmd *cobra.Command, args []string) error {
	preview := service.NewPlanPreview(client, logger)
	preview.Location = cfg.Location
	res, err := preview.Recalculate(cmd.Context(), planInputs(cmd))
	printNotices(cmd.OutOrStdout(), res.Notices)
	if err != nil {
		return explain(cmd.OutOrStdout(), err)
	}
	if res.AnchoredToNow {
		fmt.Fprintln(cmd.OutOrStdout(), "note: no --date given, plan starts now")
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Plan)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	in := planInputs(cmd)
	values, _ := cmd.Flags().GetStringArray("company")
	interval, _ := cmd.Flags().GetInt("interval")

	companies, err := parseCompanies(values)
	if err != nil {
		return err
	}

	form := service.BatchForm{
		SelectedCsv:   in.SelectedCsv,
		Companies:     companies,
		ScheduledDate: in.ScheduledDate,
		BatchSize:     in.BatchSize,
		IntervalHours: interval,
		EmailLimit:    in.EmailLimit,
	}
	// check the form before spending a plan request on it
	if err := service.Validate(form, &model.CampaignPlan{Campaigns: []model.PlanEntry{{}}}); err != nil {
		printNotices(cmd.OutOrStdout(), []model.Notice{model.ErrorNotice(err.Error())})
		return err
	}

	preview := service.NewPlanPreview(client, logger)
	preview.Location = cfg.Location
	planRes, err := preview.Recalculate(cmd.Context(), in)
	if err != nil {
		printNotices(cmd.OutOrStdout(), planRes.Notices)
		return explain(cmd.OutOrStdout(), err)
	}
	plan, err := preview.PlanFor(form)
	if err != nil {
		return err
	}

	scheduler := service.NewBatchScheduler(client, nil, logger)
	scheduler.Location = cfg.Location
	res, err := scheduler.Submit(cmd.Context(), form, plan)
	printNotices(cmd.OutOrStdout(), res.Notices)
	if err != nil {
		return explain(cmd.OutOrStdout(), err)
	}
	if res.Cancelled {
		return errors.New("interrupted")
	}
	if res.SuccessCount == 0 {
		return errors.New("no campaigns created")
	}
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	gate := service.NewEditGate(client, cfg.OTPAuthorizedEmails, cfg.OTPTTL, logger)

	notices, err := gate.RequestOTP(cmd.Context(), cmd.Context(), email)
	printNotices(cmd.OutOrStdout(), notices)
	if err != nil {
		return explain(cmd.OutOrStdout(), err)
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	for !gate.EditMode() {
		fmt.Fprintf(cmd.OutOrStdout(), "Enter OTP (%s left): ", gate.Countdown())
		if !in.Scan() {
			return errors.New("no OTP entered")
		}
		gate.EnterCode(in.Text())
		if !gate.CanVerify() {
			fmt.Fprintln(cmd.OutOrStdout(), "OTP must be 6 digits")
			continue
		}
		notices, err := gate.Verify(cmd.Context())
		printNotices(cmd.OutOrStdout(), notices)
		if appErrors.IsAuthExpired(err) {
			return explain(cmd.OutOrStdout(), err)
		}
	}
	return nil
}

// parseCompanies reads "company:tpl1,tpl2" flag values, keeping flag order.
func parseCompanies(values []string) ([]model.CompanySelection, error) {
	var out []model.CompanySelection
	for _, value := range values {
		id, tpls, ok := strings.Cut(value, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --company %q, want companyId:templateId[,templateId]", value)
		}
		sel := model.CompanySelection{CompanyAccountID: id, TemplateIDs: []string{}}
		for _, t := range strings.Split(tpls, ",") {
			if t = strings.TrimSpace(t); t != "" {
				sel.TemplateIDs = append(sel.TemplateIDs, t)
			}
		}
		out = append(out, sel)
	}
	return out, nil
}

func printNotices(w io.Writer, notices []model.Notice) {
	for _, n := range notices {
		mark := "✓"
		if n.Level == model.NoticeError {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", mark, n.Message)
	}
}

// explain adds the login hint when the session is gone.
func explain(w io.Writer, err error) error {
	var expired *appErrors.ErrAuthExpired
	if errors.As(err, &expired) {
		fmt.Fprintf(w, "Session expired. Run `adminctl login <token>` (web login: %s).\n", expired.LoginRoute)
	}
	return err
}
