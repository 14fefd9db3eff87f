package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/practicedesk/libs/grpcx"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/availability"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/calendar"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

var errConflict = errors.New("slot is taken")

func monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print a Monday-first month grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			printGrid(cmd.OutOrStdout(), calendar.MonthGrid(year, month-1))
			return nil
		},
	}
	now := time.Now()
	cmd.Flags().Int("year", now.Year(), "Calendar year")
	cmd.Flags().Int("month", int(now.Month()), "Month number, 1-12")
	return cmd
}

func printGrid(w io.Writer, g calendar.Grid) {
	fmt.Fprintf(w, "%s %d\n", time.Month(g.Month+1), g.Year)
	fmt.Fprintln(w, "Mo Tu We Th Fr Sa Su")
	for _, row := range g.Rows() {
		cells := make([]string, len(row))
		for i, c := range row {
			if c.Empty() {
				cells[i] = "  "
				continue
			}
			cells[i] = fmt.Sprintf("%2d", c.Day)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a proposed session against a JSON file of appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			date, _ := cmd.Flags().GetString("date")
			start, _ := cmd.Flags().GetString("start")
			duration, _ := cmd.Flags().GetInt("duration")

			appts, err := readAppointments(file)
			if err != nil {
				return err
			}
			conflict, err := availability.FindConflict(appts, date, start, duration)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if conflict == nil {
				fmt.Fprintf(out, "free: %s %s for %d minutes\n", date, start, duration)
				return nil
			}
			fmt.Fprintf(out, "conflict: %s is occupied by appointment %s (client %s, %d minutes)\n",
				conflict.StartTime, conflict.ID, conflict.ClientID, conflict.Duration)
			return errConflict
		},
	}
	cmd.Flags().String("file", "", "JSON array of appointments")
	cmd.Flags().String("date", "", "Date, YYYY-MM-DD")
	cmd.Flags().String("start", "", "Start time, HH:MM")
	cmd.Flags().Int("duration", 50, "Duration in minutes")
	for _, f := range []string{"file", "date", "start"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free start times on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			date, _ := cmd.Flags().GetString("date")
			duration, _ := cmd.Flags().GetInt("duration")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			step, _ := cmd.Flags().GetInt("step")

			appts, err := readAppointments(file)
			if err != nil {
				return err
			}
			slots, err := availability.FreeSlots(appts, date, from, to, duration, step)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(slots) == 0 {
				fmt.Fprintln(out, "no free slots")
				return nil
			}
			for _, s := range slots {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "JSON array of appointments")
	cmd.Flags().String("date", "", "Date, YYYY-MM-DD")
	cmd.Flags().Int("duration", 50, "Duration in minutes")
	cmd.Flags().String("from", "09:00", "Window start, HH:MM")
	cmd.Flags().String("to", "17:00", "Window end, HH:MM")
	cmd.Flags().Int("step", 15, "Minutes between candidate starts")
	for _, f := range []string{"file", "date"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func healthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the schedule-service gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			service, _ := cmd.Flags().GetString("service")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			conn, err := grpcx.Dial(addr, grpcx.DialOptions{})
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return fmt.Errorf("health check %s: %w", addr, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus().String())
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return errors.New("service not serving")
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "localhost:9093", "gRPC address")
	cmd.Flags().String("service", "", "Service name; empty checks the whole server")
	cmd.Flags().Duration("timeout", 3*time.Second, "Probe timeout")
	return cmd
}

func readAppointments(path string) ([]model.Appointment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var appts []model.Appointment
	if err := json.Unmarshal(raw, &appts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return appts, nil
}
