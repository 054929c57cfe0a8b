package media

import (
	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("media")
