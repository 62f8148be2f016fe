package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/service"
	"github.com/talentloop/portal/internal/infrastructure/session"
	"github.com/talentloop/portal/pkg/logger"
)

// userView is how the CLI prints a user and where they would land.
type userView struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Email           string        `json:"email" yaml:"email"`
	Roles           []string      `json:"roles" yaml:"roles"`
	OnboardingStage string        `json:"onboarding_stage,omitempty" yaml:"onboarding_stage,omitempty"`
	Target          domain.Target `json:"target" yaml:"target"`
	Phase           domain.Phase  `json:"phase,omitempty" yaml:"phase,omitempty"`
}

func newUserView(u *domain.User) userView {
	v := userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Roles:           u.Roles.Names(),
		OnboardingStage: u.OnboardingStage,
		Target:          service.Decide(u),
	}
	if v.Target == domain.TargetOnboarding {
		v.Phase = service.StagePhase(u.OnboardingStage)
	}
	return v
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "Output format (text, json, yaml)")
}

// render writes v in the --format chosen on cmd. text falls back to yaml,
// which reads well in a terminal.
func render(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "text", "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// cliGateway builds a gateway over the session file.
func cliGateway() (*service.AuthGateway, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	log := logger.Component("cli")
	store := session.NewStore(session.NewFileKV(path), session.Options{
		TTL:    appConfig.Session.TTL,
		Logger: log,
	})
	return service.NewAuthGateway(newRemoteClient(), store, log), nil
}

// promptLine reads one line from in after printing label to errOut.
func promptLine(in io.Reader, errOut io.Writer, label string) (string, error) {
	fmt.Fprint(errOut, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
