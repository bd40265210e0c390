package merge

import "github.com/gin-gonic/gin"

// RegisterActions adds the merge action to the front controller's action map.
func RegisterActions(actions map[string]gin.HandlerFunc, handler Handler) {
	actions["mergetopics"] = handler.MergeTopics
}
