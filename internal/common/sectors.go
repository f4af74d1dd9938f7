package common

// DefaultSectors returns the built-in sector universe, grouping display
// names of mainland and HK listed stocks by theme. Overridable via the
// [sectors] config table.
func DefaultSectors() map[string][]string {
	return map[string][]string{
		"果链":    {"立讯精密", "蓝思科技", "歌尔股份", "鹏鼎控股", "水晶光电", "领益智造", "东山精密", "高伟电子", "舜宇光学科技", "瑞声科技"},
		"服务器链":  {"华勤技术", "胜宏科技", "沪电股份", "景旺电子", "生益电子", "深南电路", "生益科技", "工业富联", "江海股份"},
		"英伟达链":  {"麦格米特", "胜宏科技", "新易盛", "中际旭创", "天孚通信"},
		"汽车汽配":  {"比亚迪", "悦达投资", "北特科技", "雪龙集团", "万安科技", "恒勃股份", "隆盛科技"},
		"医药":    {"众生药业", "海森药业", "海翔药业", "多瑞医药", "科源制药", "新天地", "贝瑞基因"},
		"港股科技":  {"小米集团", "美团", "腾讯控股", "阿里巴巴", "快手", "京东", "百度", "网易", "哔哩哔哩"},
		"港股金融":  {"汇丰控股", "中国平安", "友邦保险", "中国人寿", "新华保险", "中国太保", "招商银行", "建设银行", "工商银行", "中国银行"},
		"港股地产":  {"万科企业", "融创中国", "中国海外发展", "华润置地", "龙湖集团", "世茂集团"},
		"港股消费":  {"海底捞", "颐海国际", "蒙牛乳业", "中国飞鹤", "李宁", "安踏体育", "特步国际", "申洲国际"},
		"宠物经济":  {"中宠股份", "乖宝宠物", "源飞宠物", "可靠股份", "依依股份", "佩蒂股份"},
		"AI平台":  {"阿里巴巴", "百度", "腾讯控股", "科大讯飞"},
		"新兴家电":  {"石头科技", "科沃斯", "极米科技", "安克创新", "北鼎股份"},
		"珠宝钻石":  {"老铺黄金", "潮宏基", "莱绅通灵", "迪阿股份", "力量钻石", "黄河旋风", "豫园股份"},
		"餐饮零食":  {"三只松鼠", "盐津铺子", "万辰集团", "百龙创园", "同庆楼", "西安饮食", "九毛九", "百胜中国"},
		"创新药":   {"恒瑞医药", "荣昌生物", "华东医药", "科伦药业", "信达生物"},
		"S机器人":  {"豪能股份", "隆盛科技", "蓝黛科技", "美湖股份", "富临精工", "长源东谷"},
	}
}
