// Package workflow implements the approval chain a demand goes through before a
// tender can be published for it.
package workflow

import (
	"fmt"
	"time"

	"procurement/internal/models"
)

var chain = []struct {
	stage    models.DemandStage
	approver models.Role
}{
	{models.StagePendingLogistics, models.RoleLogisticsOfficer},
	{models.StagePendingBursar, models.RoleBursar},
	{models.StagePendingRector, models.RoleRector},
	{models.StagePendingProcurement, models.RoleProcurementOfficer},
}

// Approver returns the role expected to act on a demand in the given stage.
func Approver(stage models.DemandStage) (models.Role, bool) {
	for _, step := range chain {
		if step.stage == stage {
			return step.approver, true
		}
	}
	return "", false
}

func next(stage models.DemandStage) models.DemandStage {
	for i, step := range chain {
		if step.stage != stage {
			continue
		}
		if i+1 < len(chain) {
			return chain[i+1].stage
		}
		return models.StageApproved
	}
	return stage
}

func Approve(demand models.Demand, session models.Session, now time.Time) (models.Demand, error) {
	if err := checkApprover(demand, session); err != nil {
		return demand, fmt.Errorf("workflow.Approve: %w", err)
	}

	demand.Stage = next(demand.Stage)
	demand.UpdatedAt = now
	return demand, nil
}

func Reject(demand models.Demand, session models.Session, reason string, now time.Time) (models.Demand, error) {
	if err := checkApprover(demand, session); err != nil {
		return demand, fmt.Errorf("workflow.Reject: %w", err)
	}

	demand.Stage = models.StageRejected
	demand.Rejection = &models.Rejection{
		Role:     session.Role,
		Username: session.Username,
		Reason:   reason,
		At:       now,
	}
	demand.UpdatedAt = now
	return demand, nil
}

// Publish marks an approved demand as having a tender.
func Publish(demand models.Demand, session models.Session, now time.Time) (models.Demand, error) {
	if session.Role != models.RoleProcurementOfficer {
		return demand, fmt.Errorf("workflow.Publish: %w", models.ErrForbidden)
	}
	if demand.Stage != models.StageApproved {
		return demand, fmt.Errorf("workflow.Publish: %w: demand is %s", models.ErrDemandNotApproved, demand.Stage)
	}

	demand.Stage = models.StageTenderPublished
	demand.UpdatedAt = now
	return demand, nil
}

// VisibleStages lists the stages a role works on. Department heads are not
// limited by stage, they see the demands they raised.
func VisibleStages(role models.Role) []models.DemandStage {
	switch role {
	case models.RoleProcurementOfficer:
		return []models.DemandStage{models.StagePendingProcurement, models.StageApproved}
	case models.RoleLogisticsOfficer, models.RoleBursar, models.RoleRector:
		for _, step := range chain {
			if step.approver == role {
				return []models.DemandStage{step.stage}
			}
		}
	}
	return nil
}

// VisibleTo reports whether session may open demand. Department heads see
// the demands they raised. An approver sees every demand that has reached
// their step of the chain, whether it is waiting for them, went past them or
// was rejected at or after their step.
func VisibleTo(demand models.Demand, session models.Session) bool {
	if session.Role == models.RoleDepartmentHead {
		return demand.CreatedBy == session.Username
	}

	step := -1
	for i, s := range chain {
		if s.approver == session.Role {
			step = i
		}
	}
	if step < 0 {
		return false
	}
	return step <= reached(demand)
}

// reached is the index of the furthest chain step the demand got to.
func reached(demand models.Demand) int {
	switch demand.Stage {
	case models.StageApproved, models.StageTenderPublished:
		return len(chain)
	case models.StageRejected:
		if demand.Rejection != nil {
			for i, s := range chain {
				if s.approver == demand.Rejection.Role {
					return i
				}
			}
		}
		return -1
	}
	for i, s := range chain {
		if s.stage == demand.Stage {
			return i
		}
	}
	return -1
}

func checkApprover(demand models.Demand, session models.Session) error {
	approver, pending := Approver(demand.Stage)
	if !pending {
		return fmt.Errorf("%w: demand is %s", models.ErrDemandFinalized, demand.Stage)
	}
	if session.Role != approver {
		return fmt.Errorf("%w: demand waits for %s", models.ErrForbidden, approver)
	}
	return nil
}
