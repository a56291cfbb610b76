// Package domain contains the core concepts of the score table:
// rooms, participants, avatars and the transfer ledger.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"math/rand"

	"github.com/samber/lo"
)

// AvatarProfile is an immutable visual identity. The emoji is the identity:
// no two catalog entries share one.
type AvatarProfile struct {
	Emoji  string `json:"emoji"`
	NameCN string `json:"name_cn"`
	NameEN string `json:"name_en"`
}

// Catalog is the fixed avatar pool: animals, fruits and vegetables.
var Catalog = []AvatarProfile{
	{Emoji: "🐯", NameCN: "老虎", NameEN: "Tiger"},
	{Emoji: "🐼", NameCN: "熊猫", NameEN: "Panda"},
	{Emoji: "🦁", NameCN: "狮子", NameEN: "Lion"},
	{Emoji: "🐰", NameCN: "兔子", NameEN: "Rabbit"},
	{Emoji: "🦊", NameCN: "狐狸", NameEN: "Fox"},
	{Emoji: "🐨", NameCN: "考拉", NameEN: "Koala"},
	{Emoji: "🐧", NameCN: "企鹅", NameEN: "Penguin"},
	{Emoji: "🐵", NameCN: "猴子", NameEN: "Monkey"},
	{Emoji: "🐷", NameCN: "小猪", NameEN: "Piglet"},
	{Emoji: "🐸", NameCN: "青蛙", NameEN: "Frog"},
	{Emoji: "🍎", NameCN: "苹果", NameEN: "Apple"},
	{Emoji: "🍌", NameCN: "香蕉", NameEN: "Banana"},
	{Emoji: "🍇", NameCN: "葡萄", NameEN: "Grape"},
	{Emoji: "🍊", NameCN: "橙子", NameEN: "Orange"},
	{Emoji: "🍓", NameCN: "草莓", NameEN: "Strawberry"},
	{Emoji: "🍑", NameCN: "桃子", NameEN: "Peach"},
	{Emoji: "🍉", NameCN: "西瓜", NameEN: "Watermelon"},
	{Emoji: "🍐", NameCN: "梨", NameEN: "Pear"},
	{Emoji: "🥝", NameCN: "猕猴桃", NameEN: "Kiwi"},
	{Emoji: "🍒", NameCN: "樱桃", NameEN: "Cherry"},
	{Emoji: "🥭", NameCN: "芒果", NameEN: "Mango"},
	{Emoji: "🍍", NameCN: "菠萝", NameEN: "Pineapple"},
	{Emoji: "🥕", NameCN: "胡萝卜", NameEN: "Carrot"},
	{Emoji: "🥦", NameCN: "西兰花", NameEN: "Broccoli"},
	{Emoji: "🥒", NameCN: "黄瓜", NameEN: "Cucumber"},
	{Emoji: "🥬", NameCN: "生菜", NameEN: "Lettuce"},
	{Emoji: "🍅", NameCN: "番茄", NameEN: "Tomato"},
	{Emoji: "🥔", NameCN: "土豆", NameEN: "Potato"},
	{Emoji: "🧅", NameCN: "洋葱", NameEN: "Onion"},
	{Emoji: "🫑", NameCN: "甜椒", NameEN: "Bell Pepper"},
	{Emoji: "🌶️", NameCN: "辣椒", NameEN: "Pepper"},
	{Emoji: "🥑", NameCN: "牛油果", NameEN: "Avocado"},
	{Emoji: "🍄", NameCN: "蘑菇", NameEN: "Mushroom"},
	{Emoji: "🌽", NameCN: "玉米", NameEN: "Corn"},
}

// AvatarPool picks avatars for joining participants. The zero value is not
// usable; construct with NewAvatarPool.
type AvatarPool struct {
	profiles []AvatarProfile
	rand     *rand.Rand
}

func NewAvatarPool(profiles []AvatarProfile, rnd *rand.Rand) *AvatarPool {
	return &AvatarPool{profiles: profiles, rand: rnd}
}

// Assign returns a profile whose emoji is not used by any participant of the
// room. When the pool is exhausted (room larger than the catalog) it falls
// back to a uniformly random profile: a visual collision is a degraded mode,
// not an error.
func (p *AvatarPool) Assign(room *Room) AvatarProfile {
	if room == nil || len(room.Participants) == 0 {
		return p.profiles[p.rand.Intn(len(p.profiles))]
	}

	used := make(map[string]struct{}, len(room.Participants))
	for _, member := range room.Participants {
		used[member.Avatar.Emoji] = struct{}{}
	}

	available := lo.Filter(p.profiles, func(profile AvatarProfile, _ int) bool {
		_, taken := used[profile.Emoji]
		return !taken
	})
	if len(available) == 0 {
		return p.profiles[p.rand.Intn(len(p.profiles))]
	}
	return available[p.rand.Intn(len(available))]
}
