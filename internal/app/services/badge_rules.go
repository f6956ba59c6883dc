package services

import (
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/yigit/alumnihub/internal/app/models"
)

// badgeEnv is the variable set a badge criteria expression can read
type badgeEnv struct {
	Points            int64 `expr:"points"`
	SessionsAttended  int   `expr:"sessions_attended"`
	SessionsHosted    int   `expr:"sessions_hosted"`
	ArticlesPublished int   `expr:"articles_published"`
	Badges            int   `expr:"badges"`
	Verified          bool  `expr:"verified"`
	Alumni            bool  `expr:"alumni"`
}

func newBadgeEnv(stats *models.UserStats) badgeEnv {
	return badgeEnv{
		Points:            stats.TotalPoints,
		SessionsAttended:  stats.SessionsAttended,
		SessionsHosted:    stats.SessionsHosted,
		ArticlesPublished: stats.ArticlesPublished,
		Badges:            stats.BadgeCount,
		Verified:          stats.IsVerified,
		Alumni:            stats.IsAlumni,
	}
}

// ruleEvaluator compiles criteria once and reuses the program
type ruleEvaluator struct {
	programs sync.Map // expression -> *exprvm.Program
}

func (e *ruleEvaluator) compile(expression string) (*exprvm.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(*exprvm.Program), nil
	}
	program, err := exprlang.Compile(expression, exprlang.Env(badgeEnv{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile criteria %q: %w", expression, err)
	}
	actual, _ := e.programs.LoadOrStore(expression, program)
	return actual.(*exprvm.Program), nil
}

// eval returns true for an empty expression
func (e *ruleEvaluator) eval(expression string, env badgeEnv) (bool, error) {
	if expression == "" {
		return true, nil
	}
	program, err := e.compile(expression)
	if err != nil {
		return false, err
	}
	out, err := exprlang.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate criteria %q: %w", expression, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// ValidateCriteria reports whether expression compiles against the badge variables
func ValidateCriteria(expression string) error {
	if expression == "" {
		return nil
	}
	_, err := exprlang.Compile(expression, exprlang.Env(badgeEnv{}), exprlang.AsBool())
	return err
}
