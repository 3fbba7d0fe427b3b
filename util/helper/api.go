package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// GetPaginationParams reads limit/offset and clamps them to the page window.
func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(model.DefaultPageSize)))
	if err != nil {
		return 0, 0, grant_errors.Validation(grant_errors.ErrInvalidPagination, "limit must be an integer")
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, grant_errors.Validation(grant_errors.ErrInvalidPagination, "offset must be an integer")
	}
	if offset < 0 {
		return 0, 0, grant_errors.Validation(grant_errors.ErrInvalidPagination, "offset must not be negative")
	}
	limit, offset = model.ClampPage(limit, offset)
	return limit, offset, nil
}
