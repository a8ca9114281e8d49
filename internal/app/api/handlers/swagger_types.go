package handlers

import (
	badgesvc "github.com/badgeworks/variantbadges/internal/app/service/badge"
	subsvc "github.com/badgeworks/variantbadges/internal/app/service/subscription"
	"github.com/badgeworks/variantbadges/pkg/response"
	"github.com/badgeworks/variantbadges/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespBadgeList wraps the badge listing in the standard envelope.
type RespBadgeList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    badgeListData            `json:"data"`
}

// RespLimitCheck wraps the plan gate result in the standard envelope.
type RespLimitCheck struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.LimitCheck         `json:"data"`
}

// RespLimitExceeded is the 403 envelope returned by badge writes blocked by
// the plan gate.
type RespLimitExceeded struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    limitExceededData        `json:"data"`
}

// RespPlanStatus wraps the billing status in the standard envelope.
type RespPlanStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    planStatusData           `json:"data"`
}

// RespCancelOutcome wraps the cancellation result in the standard envelope.
type RespCancelOutcome struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.CancelOutcome     `json:"data"`
}

// RespBulkResults wraps per-item bulk outcomes in the standard envelope.
type RespBulkResults struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    []badgesvc.BulkItemResult `json:"data"`
}
