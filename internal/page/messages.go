package page

import (
	"context"
	"errors"
	"net"
	"strings"

	"charity-events/internal/apiclient"
)

const (
	MsgConnectivity = "Unable to reach the server. Check your connection and try again."
	MsgTimeout      = "The server took too long to respond. Please try again."
	MsgNotFound     = "This event could not be found. It may have ended or been removed."
	MsgInvalidID    = "Invalid event id. Check the link and try again."
	MsgInvalidDate  = "Please enter a valid date (YYYY-MM-DD)."
	MsgNotReady     = "The page could not be initialized. Please reload."
	MsgGeneric      = "Something went wrong. Please try again."
	MsgNoEvents     = "No upcoming events right now. Check back soon."
	MsgNoMatches    = "No events match your search."
)

// ErrorMessage maps an error to the short text shown in a page's error state.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		netErr        net.Error
		notFoundErr   *apiclient.NotFoundError
		validationErr *apiclient.ValidationError
		networkErr    *apiclient.NetworkError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return MsgTimeout
	case errors.Is(err, ErrSurfaceTimeout):
		return MsgNotReady
	case errors.As(err, &notFoundErr):
		return MsgNotFound
	case errors.As(err, &validationErr):
		if validationErr.Field == "date" {
			return MsgInvalidDate
		}
		return MsgInvalidID
	case errors.As(err, &networkErr):
		return MsgConnectivity
	}
	return MsgGeneric
}

// EmptySearchMessage names the active filters, e.g.
// "No events found for the selected filters: category."
func EmptySearchMessage(active []string) string {
	if len(active) == 0 {
		return MsgNoMatches
	}
	return "No events found for the selected filters: " + strings.Join(active, ", ") + "."
}
