package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/validate"
)

var (
	loginFlagPasswordStdin bool

	registerFlagFirstName string
	registerFlagLastName  string
	registerFlagEmail     string
	registerFlagAge       int
	registerFlagBirthdate string
	registerFlagAddress   string
)

// loginCmd signs in.
var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Sign in to the maintenance service",
	Long: `Sign in and keep the session in the local database. The password is
read from the terminal without echo, or from stdin with --password-stdin.

Examples:
  aircare login ana
  echo "$PW" | aircare login ana --password-stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// logoutCmd clears the session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// whoamiCmd shows the signed-in user.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// registerCmd creates an account.
var registerCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Create an employee account",
	Long: `Create an employee account. The password is prompted for twice.

Examples:
  aircare register ana --first Ana --last Cruz --email ana@example.com --age 31`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	loginCmd.Flags().BoolVar(&loginFlagPasswordStdin, "password-stdin", false, "Read the password from stdin")

	registerCmd.Flags().StringVar(&registerFlagFirstName, "first", "", "First name (required)")
	registerCmd.Flags().StringVar(&registerFlagLastName, "last", "", "Last name (required)")
	registerCmd.Flags().StringVar(&registerFlagEmail, "email", "", "Email address (required)")
	registerCmd.Flags().IntVar(&registerFlagAge, "age", 0, "Age in years")
	registerCmd.Flags().StringVar(&registerFlagBirthdate, "birthdate", "", "Birth date (YYYY-MM-DD)")
	registerCmd.Flags().StringVar(&registerFlagAddress, "address", "", "Postal address")
	registerCmd.Flags().BoolVar(&loginFlagPasswordStdin, "password-stdin", false, "Read the password from stdin")
	registerCmd.MarkFlagRequired("first")
	registerCmd.MarkFlagRequired("last")
	registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
}

// readPassword prompts on the terminal without echo. Without a terminal, or
// with --password-stdin, it reads one line from the command's input.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	f, isFile := in.(*os.File)
	if loginFlagPasswordStdin || !isFile || !term.IsTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return "", errors.NewUserError("no password on stdin", "Pipe the password in, or run in a terminal.")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.NewSystemErrorWithOp("read password", "could not read password", err)
	}
	return string(pw), nil
}

// interactive reports whether the command reads from a terminal.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := strings.TrimSpace(args[0])
	if err := validate.NonEmpty("username", username); err != nil {
		return err
	}

	password, err := readPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.NewUserErrorWithField("password", "", "password is required", "")
	}

	s, err := ctx.Session.Login(commandContext(cmd), ctx.Gateway, username, password)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(sessionResponse(s))
	}

	name := username
	if s.User != nil && s.User.FullName() != "" {
		name = s.User.FullName()
	}
	ctx.CLIFormatter().Success("Signed in as " + name)
	if ctx.Roles.HasRole(model.RoleAdmin) {
		ctx.CLIFormatter().Muted("  admin tools enabled")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	was := ctx.Session.Get().IsLoggedIn()
	if err := ctx.Session.Clear(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(&output.StatusResponse{Status: "logged_out"})
	}
	if !was {
		ctx.CLIFormatter().Muted("Not signed in.")
		return nil
	}
	ctx.CLIFormatter().Success("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s := ctx.Session.Get()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(sessionResponse(s))
	}
	if !s.IsLoggedIn() {
		return errors.ErrNotLoggedIn
	}

	cli := ctx.CLIFormatter()
	if s.User != nil {
		cli.PrintUser(s.User)
	} else {
		cli.PrintKeyValues([][2]string{{"User ID", s.UserID}})
	}
	if role := ctx.Roles.Role(); role != "" {
		cli.PrintKeyValues([][2]string{{"Token role", role}})
	}
	return nil
}

func sessionResponse(s model.Session) *output.SessionResponse {
	resp := &output.SessionResponse{
		LoggedIn: s.IsLoggedIn(),
		UserID:   s.UserID,
		Role:     ctx.Roles.Role(),
	}
	if s.User != nil {
		resp.User = output.NewUserOutput(*s.User)
	}
	return resp
}

func runRegister(cmd *cobra.Command, args []string) error {
	reg := model.Registration{
		Employee: model.Employee{
			Username:  strings.TrimSpace(args[0]),
			FirstName: validate.SanitizeName(registerFlagFirstName),
			LastName:  validate.SanitizeName(registerFlagLastName),
			Email:     strings.TrimSpace(registerFlagEmail),
			Age:       registerFlagAge,
			Birthdate: strings.TrimSpace(registerFlagBirthdate),
			Address:   validate.SanitizeText(registerFlagAddress),
		},
	}
	if err := validateEmployee(reg.Employee, cmd.Flags().Changed("age")); err != nil {
		return err
	}

	password, err := readPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.NewUserErrorWithField("password", "", "password is required", "")
	}
	if !loginFlagPasswordStdin && interactive(cmd) {
		again, err := readPassword(cmd, "Repeat password: ")
		if err != nil {
			return err
		}
		if again != password {
			return errors.NewUserErrorWithField("password", "", "passwords do not match", "")
		}
	}
	reg.Password = password

	user, err := ctx.Gateway.Register(commandContext(cmd), reg)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewUserOutput(*user))
	}
	ctx.CLIFormatter().Success("Registered " + user.Username)
	ctx.CLIFormatter().Muted("  sign in with: aircare login " + user.Username)
	return nil
}

// validateEmployee checks the fields both register and users edit accept.
func validateEmployee(e model.Employee, checkAge bool) error {
	if err := validate.Username(e.Username); err != nil {
		return err
	}
	if err := validate.Name("first name", e.FirstName); err != nil {
		return err
	}
	if err := validate.Name("last name", e.LastName); err != nil {
		return err
	}
	if err := validate.Email(e.Email); err != nil {
		return err
	}
	if checkAge {
		if err := validate.Age(e.Age); err != nil {
			return err
		}
	}
	return nil
}

// requireAdmin fails unless the session token carries the admin role.
func requireAdmin() error {
	if err := ctx.Session.RequireLogin(); err != nil {
		return err
	}
	return ctx.Roles.Require(model.RoleAdmin)
}

// currentUser returns the signed-in employee, fetching the profile when the
// session does not hold it.
func currentUser(c context.Context) (*model.Employee, error) {
	s := ctx.Session.Get()
	if !s.IsLoggedIn() {
		return nil, errors.ErrNotLoggedIn
	}
	if s.User != nil {
		return s.User, nil
	}
	if s.UserID == "" {
		return nil, nil
	}
	return ctx.Gateway.GetUser(c, s.UserID)
}
