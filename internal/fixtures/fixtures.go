// Package fixtures is the demo data loaded into a fresh development backend.
package fixtures

import (
	"github.com/shopspring/decimal"

	"yisu_backoffice/internal/domain"
)

const (
	AdminEmail    = "admin@yisu.local"
	MerchantEmail = "merchant@yisu.local"
	MerchantID    = 101
)

func Users() []domain.UserRecord {
	return []domain.UserRecord{
		{ID: 1, Name: "审核员", Email: AdminEmail, Role: domain.RoleAdmin},
		{ID: MerchantID, Name: "易宿商户", Email: MerchantEmail, Role: domain.RoleMerchant},
	}
}

func ptr(s string) *string { return &s }

func room(id int64, name string, area int, bed string, price int64, stock int, img string) domain.Room {
	return domain.Room{ID: id, Name: name, Area: area, BedInfo: bed, Price: decimal.NewFromInt(price), Stock: stock, Image: img}
}

const unsplash = "https://images.unsplash.com/"

// Hotels returns a fresh copy on every call.
func Hotels() []domain.Hotel {
	return []domain.Hotel{
		{
			HotelListing: domain.HotelListing{
				ID: 1, Name: "上海陆家嘴禧玥酒店", EnglishName: "Shanghai Lujiazui Xiyue Hotel",
				Address: "上海市浦东新区浦东大道1118号", City: "上海", Star: 5, Price: decimal.NewFromInt(936),
				Status: domain.StatusRejected, RejectReason: ptr("图片不清晰或不合规"),
			},
			OwnerID: MerchantID, Score: 4.8, OpenDate: "2020-01-01",
			CoverImage: unsplash + "photo-1542314831-c6a4d27ce66f?auto=format&fit=crop&q=80",
			Rooms: []domain.Room{
				room(1, "标准双床房", 40, "2张1.2米单人床", 936, 10, unsplash+"photo-1631049307264-da0ec9d70304?auto=format&fit=crop&q=80"),
				room(2, "豪华大床房", 50, "1张2米特大床", 1200, 5, unsplash+"photo-1590490360182-c33d57733427?auto=format&fit=crop&q=80"),
			},
		},
		{
			HotelListing: domain.HotelListing{
				ID: 2, Name: "广州四季酒店", EnglishName: "Four Seasons Hotel Guangzhou",
				Address: "广东省广州市天河区珠江新城珠江西路5号", City: "广州", Star: 5, Price: decimal.NewFromInt(2388),
				Status: domain.StatusPending,
			},
			OwnerID: MerchantID, Score: 4.9, OpenDate: "2018-05-01",
			CoverImage: unsplash + "photo-1566073771259-6a8506099945?auto=format&fit=crop&q=80",
		},
		{
			HotelListing: domain.HotelListing{
				ID: 3, Name: "西安索菲特传奇人民大厦酒店", EnglishName: "Sofitel Legend Peoples Grand Hotel Xian",
				Address: "陕西省西安市新城区东新街319号", City: "西安", Star: 5, Price: decimal.NewFromInt(2188),
				Status: domain.StatusPending,
			},
			OwnerID: MerchantID, Score: 4.8, OpenDate: "2021-02-01",
			CoverImage: unsplash + "photo-1551882547-ff40c0d5b5df?auto=format&fit=crop&q=80",
		},
		{
			HotelListing: domain.HotelListing{
				ID: 4, Name: "三亚亚特兰蒂斯酒店", EnglishName: "Atlantis Sanya",
				Address: "海南省三亚市海棠区海棠北路36号", City: "三亚", Star: 5, Price: decimal.NewFromInt(2888),
				Status: domain.StatusPublished,
			},
			OwnerID: MerchantID, Score: 4.9, OpenDate: "2019-10-01",
			CoverImage: unsplash + "photo-1582719478250-c89cae4dc85b?auto=format&fit=crop&q=80",
		},
		{
			HotelListing: domain.HotelListing{
				ID: 5, Name: "北京颐和安缦酒店", EnglishName: "Aman Summer Palace Beijing",
				Address: "北京市海淀区颐和园15号", City: "北京", Star: 5, Price: decimal.NewFromInt(5888),
				Status: domain.StatusPublished,
			},
			OwnerID: MerchantID, Score: 5.0, OpenDate: "2008-09-01",
			Description:  "坐落于颐和园东门，这里的套房和客房散落在充满历史底蕴的庭院中。",
			CoverImage:   unsplash + "photo-1549294413-26f195200c16?auto=format&fit=crop&q=80",
			DetailImages: []string{
				unsplash + "photo-1571896349842-33c89424de2d?auto=format&fit=crop&q=80",
				unsplash + "photo-1520250497591-112f2f40a3f4?auto=format&fit=crop&q=80",
			},
			Tags: []string{"园林酒店", "文化遗产", "极致奢华"},
			Rooms: []domain.Room{
				room(5, "庭院套房", 60, "1张2米特大床", 5888, 3, unsplash+"photo-1582719478237-7504629471f4?auto=format&fit=crop&q=80"),
			},
		},
	}
}
