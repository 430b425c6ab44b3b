package enrich

import "github.com/rl1809/order-reconciler/internal/core/domain"

// MergeDirectory assembles the service directory from several physical lists.
// Entries sharing any identity are merged; the earlier list keeps its
// meaningful values and an agent is active if any copy says so.
func MergeDirectory(lists ...[]domain.ServiceAgent) []domain.ServiceAgent {
	var out []domain.ServiceAgent
	index := make(map[string]int)

	for _, list := range lists {
		for _, agent := range list {
			pos := -1
			for _, key := range agent.Keys() {
				if p, ok := index[key]; ok {
					pos = p
					break
				}
			}
			if pos < 0 {
				pos = len(out)
				out = append(out, agent)
			} else {
				out[pos] = mergeAgent(out[pos], agent)
			}
			for _, key := range out[pos].Keys() {
				index[key] = pos
			}
		}
	}
	return out
}

func mergeAgent(acc, in domain.ServiceAgent) domain.ServiceAgent {
	if acc.ID == "" {
		acc.ID = in.ID
	}
	if acc.UserID == "" {
		acc.UserID = in.UserID
	}
	acc.Name = fillName(acc.Name, in.Name)
	acc.NickName = fillName(acc.NickName, in.NickName)
	acc.Avatar = fillAvatar(acc.Avatar, in.Avatar)
	acc.AvatarURL = fillAvatar(acc.AvatarURL, in.AvatarURL)
	acc.IsActive = acc.IsActive || in.IsActive
	return acc
}
